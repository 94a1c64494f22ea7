// flightprep-report - summary reports over a cleaned dataset
//
// Reads a cleaned merged CSV (plain or .gz) and prints the delay
// statistics the dashboard shows: overall stats, airline ranking, monthly
// mean delay, and the daily cancellation series with its rolling mean.
// Each table can also be written out as CSV.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/flightprep-report ./cmd/flightprep-report

package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/aerodata/flightprep/internal/common"
	"github.com/aerodata/flightprep/internal/summary"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const defaultRollingWindow = 30

// loadFrame reads a cleaned merged CSV into the summary dataframe shape,
// adding the month column the aggregations group on.
func loadFrame(path string) (dataframe.DataFrame, error) {
	f, err := common.OpenData(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			"dep_delay_min": series.Float,
		}),
	)
	if df.Err != nil {
		return df, fmt.Errorf("reading %s: %w", path, df.Err)
	}

	dates := df.Col("fl_date").Records()
	months := make([]string, len(dates))
	for i, d := range dates {
		if len(d) >= 7 {
			months[i] = d[:7]
		}
	}
	df = df.Mutate(series.New(months, series.String, "month"))
	if df.Err != nil {
		return df, fmt.Errorf("deriving months: %w", df.Err)
	}
	return df, nil
}

func writeFrame(dir, name string, df dataframe.DataFrame) error {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote: %s", path)
	return nil
}

func writeCancellations(dir string, daily []summary.DailyCancellations) error {
	path := filepath.Join(dir, "daily_cancellations.csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Write([]string{"fl_date", "cancellations", "rolling_mean"})
	for _, d := range daily {
		w.Write([]string{
			d.Day,
			strconv.Itoa(d.Count),
			strconv.FormatFloat(d.Rolling, 'f', 2, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote: %s", path)
	return nil
}

func main() {
	input := flag.String("input", "", "Cleaned merged CSV (.csv or .csv.gz)")
	top := flag.Int("top", 10, "Airlines in the delay ranking")
	longDelay := flag.Float64("long-delay-min", 15, "Delay cutoff for the long-delay share, minutes")
	window := flag.Int("window", defaultRollingWindow, "Rolling mean window for cancellations, days")
	outDir := flag.String("out-dir", "", "Directory for report CSVs (stdout only when empty)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flightprep-report v%s - Dataset Summary Reports\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s -input cleaned.csv [OPTIONS]\n\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if *input == "" {
		flag.Usage()
		log.Fatal("-input is required")
	}

	df, err := loadFrame(*input)
	if err != nil {
		log.Fatalf("Load error: %v", err)
	}

	ov := summary.Overall(df, *longDelay)
	fmt.Println("=========================================================")
	fmt.Printf("flightprep-report v%s\n", Version)
	fmt.Println("=========================================================")
	fmt.Printf("Rows:         %d\n", ov.Rows)
	fmt.Printf("Mean Delay:   %.1f min (median %.1f)\n", ov.MeanDepDelay, ov.MedianDepDelay)
	fmt.Printf("Long Delays:  %.1f%% over %.0f min\n", ov.PctLongDelays, *longDelay)
	fmt.Printf("Cancelled:    %d\n", ov.Cancellations)
	fmt.Printf("Wx Impacted:  %d\n", ov.WeatherImpacted)

	ranked, err := summary.AirlineDelays(df, *top)
	if err != nil {
		log.Fatalf("Ranking error: %v", err)
	}
	airlines := ranked.Col("airline").Records()
	means := ranked.Col("dep_delay_min_MEAN").Float()
	fmt.Println()
	fmt.Println("Worst airlines by mean departure delay:")
	for i := range airlines {
		fmt.Printf("  %2d. %-8s %.1f min\n", i+1, airlines[i], means[i])
	}

	monthly, err := summary.MonthlyMeanDelay(df)
	if err != nil {
		log.Fatalf("Monthly error: %v", err)
	}
	monthNames := monthly.Col("month").Records()
	monthMeans := monthly.Col("dep_delay_min_MEAN").Float()
	fmt.Println()
	fmt.Println("Mean departure delay by month:")
	for i := range monthNames {
		fmt.Printf("  %s  %.1f min\n", monthNames[i], monthMeans[i])
	}

	cancellations, err := summary.CancellationSeries(df, *window)
	if err != nil {
		log.Fatalf("Cancellation series error: %v", err)
	}

	if *outDir == "" {
		return
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	if err := writeFrame(*outDir, "airline_delays.csv", ranked); err != nil {
		log.Fatalf("Write error: %v", err)
	}
	if err := writeFrame(*outDir, "monthly_mean_delay.csv", monthly); err != nil {
		log.Fatalf("Write error: %v", err)
	}
	if len(cancellations) > 0 {
		if err := writeCancellations(*outDir, cancellations); err != nil {
			log.Fatalf("Write error: %v", err)
		}
	}
}
