// Package flight provides flight record parsing for the preparation
// pipeline. Source files are one-row-per-flight CSVs in the common BTS /
// nycflights layouts; columns are matched by header name, upper-cased,
// with the usual aliases (CARRIER vs AIRLINE, CRS_DEP_TIME vs
// SCHED_DEP_TIME, FL_DATE vs YEAR+MONTH+DAY).
package flight

import (
	"math"
	"time"
)

// Record is a single flight. Missing numeric values are NaN; missing
// times are the zero time.
type Record struct {
	Date      time.Time // flight date, midnight UTC
	Airline   string    // carrier code
	Number    string    // flight number
	TailNum   string    // aircraft tail number
	Origin    string    // origin airport code (merge key with Date)
	Dest      string    // destination airport code
	SchedDep  time.Time
	ActualDep time.Time
	SchedArr  time.Time
	ActualArr time.Time

	DepDelayMin float64 // departure delay in minutes
	ArrDelayMin float64 // arrival delay in minutes
	Distance    float64 // great circle distance, miles

	Cancelled bool
}

// HasDepDelay reports whether the departure delay is present.
func (r *Record) HasDepDelay() bool { return !math.IsNaN(r.DepDelayMin) }

// HasArrDelay reports whether the arrival delay is present.
func (r *Record) HasArrDelay() bool { return !math.IsNaN(r.ArrDelayMin) }

// HasKey reports whether the merge key fields are populated. Rows without
// a key cannot be joined and are dropped during cleaning.
func (r *Record) HasKey() bool { return !r.Date.IsZero() && r.Origin != "" }
