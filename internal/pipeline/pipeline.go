// Package pipeline implements the data preparation pipeline: load the two
// raw sources, clean them under a fixed missing-value policy, left-join
// flights onto daily weather, derive the delay and weather-impact fields,
// and validate row retention. The pipeline runs start to finish once per
// invocation; fatal errors abort the run, data quality findings are
// collected as warnings.
package pipeline

import (
	"time"

	"github.com/aerodata/flightprep/internal/common"
	"github.com/aerodata/flightprep/internal/flight"
	"github.com/aerodata/flightprep/internal/weather"
	"github.com/aerodata/flightprep/pkg/logger"
)

// Thresholds holds the business cutoffs for derived fields.
type Thresholds struct {
	MinorDelayMin float64 // delays above this are at least minor
	MajorDelayMin float64 // delays above this are major
	PrecipIn      float64 // precipitation at or above marks weather impact
	VisibilityMi  float64 // visibility at or below marks weather impact
	WindGustMph   float64 // gusts at or above mark weather impact
}

// Tolerances bounds acceptable data loss before warnings are raised.
type Tolerances struct {
	MinRetention float64 // merged rows / input flight rows
	MinMatchRate float64 // matched rows / merged rows
}

// Options configures a pipeline run.
type Options struct {
	Thresholds Thresholds
	Tolerances Tolerances
}

// DefaultOptions returns the documented default cutoffs: 15/60 minute
// delay buckets, 0.10 in precipitation, 3 mi visibility, 35 mph gusts,
// 95% retention and 50% match rate.
func DefaultOptions() Options {
	return Options{
		Thresholds: Thresholds{
			MinorDelayMin: 15,
			MajorDelayMin: 60,
			PrecipIn:      0.10,
			VisibilityMi:  3.0,
			WindGustMph:   35,
		},
		Tolerances: Tolerances{
			MinRetention: 0.95,
			MinMatchRate: 0.50,
		},
	}
}

// Pipeline prepares the merged dataset.
type Pipeline struct {
	opts    Options
	log     *logger.Logger
	flights *flight.Parser
	weather *weather.Parser
}

// New creates a pipeline with the given options.
func New(opts Options, log *logger.Logger) *Pipeline {
	return &Pipeline{
		opts:    opts,
		log:     log.Named("pipeline"),
		flights: flight.NewParser(log),
		weather: weather.NewParser(log),
	}
}

// Result is the outcome of a pipeline run.
type Result struct {
	Records []MergedRecord
	Report  Report

	FlightStats  common.ParseStats
	WeatherStats common.ParseStats
}

// Run executes load -> clean -> merge -> derive -> validate over the two
// source files. Returns *common.FileError or *common.SchemaError on fatal
// input problems.
func (p *Pipeline) Run(flightsPath, weatherPath string, progress *common.Progress) (*Result, error) {
	start := time.Now()

	flights, fstats, err := p.flights.ParseFile(flightsPath, progress)
	if err != nil {
		return nil, err
	}
	p.log.Info("flights loaded",
		logger.String("path", flightsPath),
		logger.Int64("rows", fstats.TotalRowsRead),
		logger.Int64("parsed", fstats.SuccessfullyParsed),
		logger.Int64("dropped", fstats.FailedRows))

	observations, wstats, err := p.weather.ParseFile(weatherPath, progress)
	if err != nil {
		return nil, err
	}
	p.log.Info("weather loaded",
		logger.String("path", weatherPath),
		logger.Int64("rows", wstats.TotalRowsRead),
		logger.Int64("parsed", wstats.SuccessfullyParsed),
		logger.Int64("dropped", wstats.FailedRows))

	flights = p.cleanFlights(flights, &fstats)

	daily, skippedObs := weather.Aggregate(observations)
	wstats.DroppedKeyRows = int64(skippedObs)
	p.imputeWeather(daily)
	p.log.Info("weather aggregated",
		logger.Int("daily_rows", len(daily)),
		logger.Int("skipped_no_key", skippedObs))

	merged, mergeWarnings := p.merge(flights, daily)
	p.derive(merged)

	report := p.validate(merged, fstats, mergeWarnings)
	for _, w := range report.Warnings {
		p.log.Warn("data quality warning",
			logger.String("code", w.Code),
			logger.String("detail", w.Message))
	}

	p.log.Info("pipeline complete",
		logger.Int("merged_rows", len(merged)),
		logger.Float64("retention", report.Retention),
		logger.Float64("match_rate", report.MatchRate),
		logger.Duration("elapsed", time.Since(start)))

	return &Result{
		Records:      merged,
		Report:       report,
		FlightStats:  fstats,
		WeatherStats: wstats,
	}, nil
}
