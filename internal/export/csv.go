package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/aerodata/flightprep/internal/pipeline"
)

// Header is the fixed column order of the CSV export.
var Header = []string{
	"fl_date", "airline", "flight_num", "tail_num", "origin", "dest",
	"sched_dep", "dep_time", "sched_arr", "arr_time",
	"dep_delay_min", "arr_delay_min", "distance", "cancelled",
	"temp", "dewp", "humid", "wind_dir", "wind_speed", "wind_gust",
	"precip", "pressure", "visib",
	"delay_category", "weather_impact",
}

// WriteCSV writes the merged dataset to path. A .gz suffix selects gzip
// compression. Missing values are written as empty fields.
func WriteCSV(path string, merged []pipeline.MergedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var out io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		out = gz
	}

	fail := func(err error) error {
		f.Close()
		return err
	}

	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return fail(err)
	}

	for i := range merged {
		row := RowFrom(&merged[i])
		record := []string{
			row.FlDate, row.Airline, row.FlightNum, row.TailNum, row.Origin, row.Dest,
			row.SchedDep, row.DepTime, row.SchedArr, row.ArrTime,
			formatFloat(row.DepDelayMin), formatFloat(row.ArrDelayMin),
			formatFloat(row.Distance), strconv.FormatBool(row.Cancelled),
			formatOptional(row.Temp), formatOptional(row.Dewp), formatOptional(row.Humid),
			formatOptional(row.WindDir), formatOptional(row.WindSpeed), formatOptional(row.WindGust),
			formatOptional(row.Precip), formatOptional(row.Pressure), formatOptional(row.Visib),
			row.DelayCategory, row.WeatherImpact,
		}
		if err := w.Write(record); err != nil {
			return fail(err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fail(err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fail(err)
		}
	}
	return f.Close()
}
