// flightprep - flight + weather data preparation pipeline
//
// Loads the raw flights and weather CSVs (plain or .gz), cleans them under
// the fixed imputation policy, left-joins flights onto daily weather,
// derives the delay and weather-impact fields, validates retention, and
// writes the cleaned dataset as CSV and/or Parquet.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/flightprep ./cmd/flightprep

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aerodata/flightprep/internal/common"
	"github.com/aerodata/flightprep/internal/config"
	"github.com/aerodata/flightprep/internal/export"
	"github.com/aerodata/flightprep/internal/pipeline"
	"github.com/aerodata/flightprep/internal/summary"
	"github.com/aerodata/flightprep/pkg/logger"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	flightsPath := flag.String("flights", "", "Flights CSV path (.csv or .csv.gz)")
	weatherPath := flag.String("weather", "", "Weather CSV path (.csv or .csv.gz)")
	outCSV := flag.String("out-csv", "", "Cleaned dataset CSV output (.csv or .csv.gz)")
	outParquet := flag.String("out-parquet", "", "Cleaned dataset Parquet output")
	configPath := flag.String("config", "", "Config file (default: configs/flightprep.toml)")
	reportDir := flag.String("report-dir", "", "Run report output directory")
	topAirlines := flag.Int("top", 10, "Airlines to include in the delay ranking")
	silent := flag.Bool("silent", false, "Suppress progress output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flightprep v%s - Flight Data Preparation Pipeline\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Pipeline stages:\n")
		fmt.Fprintf(os.Stderr, "  - Load flights and weather CSVs (gzip supported)\n")
		fmt.Fprintf(os.Stderr, "  - Clean with the fixed imputation policy\n")
		fmt.Fprintf(os.Stderr, "  - Left-join flights onto per-day weather means\n")
		fmt.Fprintf(os.Stderr, "  - Derive delay_category and weather_impact\n")
		fmt.Fprintf(os.Stderr, "  - Validate row retention and match rate\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *flightsPath != "" {
		cfg.Inputs.FlightsPath = *flightsPath
	}
	if *weatherPath != "" {
		cfg.Inputs.WeatherPath = *weatherPath
	}
	if *outCSV != "" {
		cfg.Export.CSVPath = *outCSV
	}
	if *outParquet != "" {
		cfg.Export.ParquetPath = *outParquet
	}
	if *reportDir != "" {
		cfg.Export.ReportDir = *reportDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if cfg.Inputs.FlightsPath == "" || cfg.Inputs.WeatherPath == "" {
		flag.Usage()
		log.Fatal("Both -flights and -weather are required")
	}

	zl, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: "console"})
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer zl.Sync()

	log.Println("=========================================================")
	log.Printf("flightprep v%s - Flight Data Preparation Pipeline", Version)
	log.Println("=========================================================")
	log.Printf("Flights: %s", cfg.Inputs.FlightsPath)
	log.Printf("Weather: %s", cfg.Inputs.WeatherPath)
	log.Printf("CPUs: %d", runtime.NumCPU())

	progress := common.NewProgress()
	progress.SetSilent(*silent)
	progress.StartReporter()

	opts := pipeline.Options{
		Thresholds: pipeline.Thresholds{
			MinorDelayMin: cfg.Thresholds.MinorDelayMin,
			MajorDelayMin: cfg.Thresholds.MajorDelayMin,
			PrecipIn:      cfg.Thresholds.PrecipIn,
			VisibilityMi:  cfg.Thresholds.VisibilityMi,
			WindGustMph:   cfg.Thresholds.WindGustMph,
		},
		Tolerances: pipeline.Tolerances{
			MinRetention: cfg.Validation.MinRetention,
			MinMatchRate: cfg.Validation.MinMatchRate,
		},
	}

	start := time.Now()
	result, err := pipeline.New(opts, zl).Run(cfg.Inputs.FlightsPath, cfg.Inputs.WeatherPath, progress)
	progress.StopReporter()
	if err != nil {
		var fe *common.FileError
		var se *common.SchemaError
		switch {
		case errors.As(err, &fe):
			log.Fatalf("Input error: %v", fe)
		case errors.As(err, &se):
			log.Fatalf("Schema error: %v", se)
		default:
			log.Fatalf("Pipeline error: %v", err)
		}
	}
	elapsed := time.Since(start)

	if cfg.Export.CSVPath != "" {
		if err := export.WriteCSV(cfg.Export.CSVPath, result.Records); err != nil {
			log.Fatalf("CSV export error: %v", err)
		}
		log.Printf("CSV: %s (%d rows)", cfg.Export.CSVPath, len(result.Records))
	}
	if cfg.Export.ParquetPath != "" {
		if err := export.WriteParquet(cfg.Export.ParquetPath, result.Records); err != nil {
			log.Fatalf("Parquet export error: %v", err)
		}
		log.Printf("Parquet: %s (%d rows)", cfg.Export.ParquetPath, len(result.Records))
	}

	report := result.Report
	log.Println()
	log.Println("=========================================================")
	log.Println("Run Summary")
	log.Println("=========================================================")
	log.Printf("Input Rows:   %d flights, %d weather", report.InputFlightRows, result.WeatherStats.TotalRowsRead)
	log.Printf("Merged Rows:  %d", report.MergedRows)
	log.Printf("Retention:    %.1f%%", report.Retention*100)
	log.Printf("Match Rate:   %.1f%%", report.MatchRate*100)
	log.Printf("Elapsed:      %v", elapsed.Round(time.Millisecond))
	for _, w := range report.Warnings {
		log.Printf("Warning:      [%s] %s", w.Code, w.Message)
	}

	printSummaries(result.Records, opts.Thresholds.MinorDelayMin, *topAirlines)

	if cfg.Export.ReportDir != "" {
		if err := writeReport(cfg.Export.ReportDir, result, elapsed); err != nil {
			log.Printf("Report warning: %v", err)
		}
	}
}

func printSummaries(records []pipeline.MergedRecord, longDelayMin float64, topN int) {
	df, err := summary.Frame(records)
	if err != nil {
		log.Printf("Summary warning: %v", err)
		return
	}

	ov := summary.Overall(df, longDelayMin)
	log.Println("=========================================================")
	log.Printf("Mean Delay:   %.1f min (median %.1f)", ov.MeanDepDelay, ov.MedianDepDelay)
	log.Printf("Long Delays:  %.1f%% over %.0f min", ov.PctLongDelays, longDelayMin)
	log.Printf("Cancelled:    %d", ov.Cancellations)
	log.Printf("Wx Impacted:  %d", ov.WeatherImpacted)

	ranked, err := summary.AirlineDelays(df, topN)
	if err != nil {
		log.Printf("Summary warning: %v", err)
		return
	}
	airlines := ranked.Col("airline").Records()
	means := ranked.Col("dep_delay_min_MEAN").Float()
	log.Printf("Worst airlines by mean departure delay:")
	for i := range airlines {
		log.Printf("  %2d. %-8s %.1f min", i+1, airlines[i], means[i])
	}
}

func writeReport(dir string, result *pipeline.Result, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, fmt.Sprintf("flightprep_%s.log", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	report := result.Report
	fmt.Fprintf(f, "flightprep v%s Report\n", Version)
	fmt.Fprintf(f, "=====================\n")
	fmt.Fprintf(f, "Flight Rows:  %d read, %d parsed, %d dropped\n",
		result.FlightStats.TotalRowsRead, result.FlightStats.SuccessfullyParsed, result.FlightStats.FailedRows)
	fmt.Fprintf(f, "Weather Rows: %d read, %d parsed, %d dropped\n",
		result.WeatherStats.TotalRowsRead, result.WeatherStats.SuccessfullyParsed, result.WeatherStats.FailedRows)
	fmt.Fprintf(f, "Merged Rows:  %d\n", report.MergedRows)
	fmt.Fprintf(f, "Matched Rows: %d\n", report.MatchedRows)
	fmt.Fprintf(f, "Retention:    %.2f%%\n", report.Retention*100)
	fmt.Fprintf(f, "Match Rate:   %.2f%%\n", report.MatchRate*100)
	fmt.Fprintf(f, "Elapsed:      %v\n", elapsed.Round(time.Millisecond))
	for _, w := range report.Warnings {
		fmt.Fprintf(f, "Warning:      [%s] %s\n", w.Code, w.Message)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("Report: %s", path)
	return nil
}
