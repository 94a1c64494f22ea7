// Package export writes the cleaned merged dataset for downstream use:
// CSV (plain or gzip) for the dashboard import path, Parquet for the
// warehouse loader.
package export

import (
	"math"
	"strconv"
	"time"

	"github.com/aerodata/flightprep/internal/pipeline"
)

// DateLayout is the calendar-day format used in every export.
const DateLayout = "2006-01-02"

// ClockLayout is the wall-time format for scheduled/actual times.
const ClockLayout = "15:04"

// Row is the flat export schema shared by the Parquet writer and the
// warehouse loader. Weather columns are optional: they are null for
// flights with no matched weather row.
type Row struct {
	FlDate    string `parquet:"fl_date,dict"`
	Airline   string `parquet:"airline,dict"`
	FlightNum string `parquet:"flight_num"`
	TailNum   string `parquet:"tail_num"`
	Origin    string `parquet:"origin,dict"`
	Dest      string `parquet:"dest,dict"`

	SchedDep string `parquet:"sched_dep"`
	DepTime  string `parquet:"dep_time"`
	SchedArr string `parquet:"sched_arr"`
	ArrTime  string `parquet:"arr_time"`

	DepDelayMin float64 `parquet:"dep_delay_min"`
	ArrDelayMin float64 `parquet:"arr_delay_min"`
	Distance    float64 `parquet:"distance"`
	Cancelled   bool    `parquet:"cancelled"`

	Temp      *float64 `parquet:"temp,optional"`
	Dewp      *float64 `parquet:"dewp,optional"`
	Humid     *float64 `parquet:"humid,optional"`
	WindDir   *float64 `parquet:"wind_dir,optional"`
	WindSpeed *float64 `parquet:"wind_speed,optional"`
	WindGust  *float64 `parquet:"wind_gust,optional"`
	Precip    *float64 `parquet:"precip,optional"`
	Pressure  *float64 `parquet:"pressure,optional"`
	Visib     *float64 `parquet:"visib,optional"`

	// HasWeather distinguishes an unmatched flight from a matched one
	// whose observed fields all happen to be null.
	HasWeather bool `parquet:"has_weather"`

	DelayCategory string `parquet:"delay_category,dict"`
	WeatherImpact string `parquet:"weather_impact,dict"`
}

// RowFrom flattens a merged record into the export schema.
func RowFrom(m *pipeline.MergedRecord) Row {
	f := &m.Flight
	row := Row{
		FlDate:        f.Date.Format(DateLayout),
		Airline:       f.Airline,
		FlightNum:     f.Number,
		TailNum:       f.TailNum,
		Origin:        f.Origin,
		Dest:          f.Dest,
		SchedDep:      formatClock(f.SchedDep),
		DepTime:       formatClock(f.ActualDep),
		SchedArr:      formatClock(f.SchedArr),
		ArrTime:       formatClock(f.ActualArr),
		DepDelayMin:   f.DepDelayMin,
		ArrDelayMin:   f.ArrDelayMin,
		Distance:      f.Distance,
		Cancelled:     f.Cancelled,
		HasWeather:    m.HasWeather,
		DelayCategory: string(m.DelayCategory),
		WeatherImpact: string(m.WeatherImpact),
	}

	if m.HasWeather {
		w := &m.Weather
		row.Temp = optional(w.Temp)
		row.Dewp = optional(w.Dewp)
		row.Humid = optional(w.Humid)
		row.WindDir = optional(w.WindDir)
		row.WindSpeed = optional(w.WindSpeed)
		row.WindGust = optional(w.WindGust)
		row.Precip = optional(w.Precip)
		row.Pressure = optional(w.Pressure)
		row.Visib = optional(w.Visib)
	}
	return row
}

// Rows flattens a merged dataset.
func Rows(merged []pipeline.MergedRecord) []Row {
	rows := make([]Row, len(merged))
	for i := range merged {
		rows[i] = RowFrom(&merged[i])
	}
	return rows
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ClockLayout)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
