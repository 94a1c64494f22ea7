// Package weather provides weather record parsing and per-day aggregation
// for the preparation pipeline. Sources are hourly station observations;
// the pipeline merges on whole days, so observations are averaged down to
// one row per (date, airport) before joining.
package weather

import (
	"math"
	"time"
)

// Record is one weather observation (or, after Aggregate, one daily
// average) for an airport. Missing numeric values are NaN.
type Record struct {
	Airport string    // station airport code (merge key with Date)
	Date    time.Time // observation date, midnight UTC

	Temp      float64 // temperature, degrees F
	Dewp      float64 // dew point, degrees F
	Humid     float64 // relative humidity, percent
	WindDir   float64 // wind direction, degrees
	WindSpeed float64 // wind speed, mph
	WindGust  float64 // wind gust, mph
	Precip    float64 // precipitation, inches
	Pressure  float64 // sea level pressure, millibars
	Visib     float64 // visibility, miles
}

// Key is the (date, airport) merge key. Dates are formatted as a plain
// calendar day so time-of-day never splits the join.
type Key struct {
	Day     string // "2006-01-02"
	Airport string
}

// KeyOf builds the merge key for an airport and timestamp.
func KeyOf(airport string, date time.Time) Key {
	return Key{Day: date.UTC().Format("2006-01-02"), Airport: airport}
}

// Key returns the record's merge key.
func (r *Record) Key() Key { return KeyOf(r.Airport, r.Date) }

// HasKey reports whether the merge key fields are populated.
func (r *Record) HasKey() bool { return !r.Date.IsZero() && r.Airport != "" }

// Numerics returns pointers to the numeric fields in a fixed order, used
// by aggregation and imputation so the field list lives in one place.
func (r *Record) Numerics() []*float64 {
	return []*float64{
		&r.Temp, &r.Dewp, &r.Humid,
		&r.WindDir, &r.WindSpeed, &r.WindGust,
		&r.Precip, &r.Pressure, &r.Visib,
	}
}

// NumericCount is the number of numeric fields on a Record.
const NumericCount = 9

// NewRecord returns a Record with all numeric fields missing.
func NewRecord(airport string, date time.Time) Record {
	r := Record{Airport: airport, Date: date}
	for _, f := range r.Numerics() {
		*f = math.NaN()
	}
	return r
}
