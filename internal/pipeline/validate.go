package pipeline

import (
	"fmt"

	"github.com/aerodata/flightprep/internal/common"
)

// Report summarizes a pipeline run for the caller. Warnings are data
// quality findings; none of them abort the run.
type Report struct {
	InputFlightRows int // flight rows read from the source
	MergedRows      int // rows in the final dataset
	MatchedRows     int // merged rows with weather attached

	Retention float64 // MergedRows / InputFlightRows
	MatchRate float64 // MatchedRows / MergedRows

	Warnings []common.Warning
}

// validate checks that cleaning and merging did not silently shed rows
// beyond tolerance, and that the join matched a reasonable share of
// flights.
func (p *Pipeline) validate(merged []MergedRecord, fstats common.ParseStats, warnings []common.Warning) Report {
	report := Report{
		InputFlightRows: int(fstats.TotalRowsRead),
		MergedRows:      len(merged),
		Warnings:        warnings,
	}
	for i := range merged {
		if merged[i].HasWeather {
			report.MatchedRows++
		}
	}

	report.Retention = 1
	if report.InputFlightRows > 0 {
		report.Retention = float64(report.MergedRows) / float64(report.InputFlightRows)
	}
	report.MatchRate = 1
	if report.MergedRows > 0 {
		report.MatchRate = float64(report.MatchedRows) / float64(report.MergedRows)
	}

	tol := p.opts.Tolerances
	if report.Retention < tol.MinRetention {
		report.Warnings = append(report.Warnings, common.Warning{
			Code: "LOW_RETENTION",
			Message: fmt.Sprintf("retained %.1f%% of %d input rows, below the %.1f%% tolerance",
				report.Retention*100, report.InputFlightRows, tol.MinRetention*100),
		})
	}
	if report.MatchRate < tol.MinMatchRate {
		report.Warnings = append(report.Warnings, common.Warning{
			Code: "LOW_MATCH_RATE",
			Message: fmt.Sprintf("weather matched %.1f%% of %d merged rows, below the %.1f%% tolerance",
				report.MatchRate*100, report.MergedRows, tol.MinMatchRate*100),
		})
	}
	return report
}
