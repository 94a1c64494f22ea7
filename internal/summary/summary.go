// Package summary computes the analytical aggregates the dashboard
// presents alongside the raw dataset: overall delay statistics, airline
// rankings, monthly trends and cancellation series. All of it runs over a
// gota dataframe built from the merged records.
package summary

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/aerodata/flightprep/internal/pipeline"
)

// Frame builds the analysis dataframe from merged records. Columns:
// fl_date, month (yyyy-mm), airline, dep_delay_min, cancelled,
// delay_category, weather_impact.
func Frame(merged []pipeline.MergedRecord) (dataframe.DataFrame, error) {
	records := make([][]string, 0, len(merged)+1)
	records = append(records, []string{
		"fl_date", "month", "airline", "dep_delay_min",
		"cancelled", "delay_category", "weather_impact",
	})

	for i := range merged {
		m := &merged[i]
		day := m.Flight.Date.Format("2006-01-02")
		records = append(records, []string{
			day,
			day[:7],
			m.Flight.Airline,
			strconv.FormatFloat(m.Flight.DepDelayMin, 'f', -1, 64),
			strconv.FormatBool(m.Flight.Cancelled),
			string(m.DelayCategory),
			string(m.WeatherImpact),
		})
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			"dep_delay_min": series.Float,
		}),
	)
	if df.Err != nil {
		return df, fmt.Errorf("building summary frame: %w", df.Err)
	}
	return df, nil
}

// Overview holds whole-dataset statistics.
type Overview struct {
	Rows            int
	MeanDepDelay    float64
	MedianDepDelay  float64
	PctLongDelays   float64 // share of flights delayed past the minor cutoff, percent
	Cancellations   int
	WeatherImpacted int
}

// Overall computes dataset-level statistics. longDelayMin is the delay
// cutoff (minutes) above which a flight counts as a long delay.
func Overall(df dataframe.DataFrame, longDelayMin float64) Overview {
	delays := df.Col("dep_delay_min")

	long := 0
	for _, v := range delays.Float() {
		if v > longDelayMin {
			long++
		}
	}

	ov := Overview{
		Rows:           df.Nrow(),
		MeanDepDelay:   delays.Mean(),
		MedianDepDelay: delays.Median(),
	}
	if ov.Rows > 0 {
		ov.PctLongDelays = 100 * float64(long) / float64(ov.Rows)
	}

	ov.Cancellations = df.Filter(dataframe.F{
		Colname: "cancelled", Comparator: series.Eq, Comparando: "true",
	}).Nrow()
	ov.WeatherImpacted = df.Filter(dataframe.F{
		Colname: "weather_impact", Comparator: series.Eq, Comparando: string(pipeline.ImpactImpacted),
	}).Nrow()
	return ov
}

// AirlineDelays ranks airlines by mean departure delay, worst first,
// trimmed to topN rows (0 keeps all). Columns: airline,
// dep_delay_min_MEAN.
func AirlineDelays(df dataframe.DataFrame, topN int) (dataframe.DataFrame, error) {
	agg := df.GroupBy("airline").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_MEAN},
		[]string{"dep_delay_min"},
	)
	if agg.Err != nil {
		return agg, fmt.Errorf("airline aggregation: %w", agg.Err)
	}

	sorted := agg.Arrange(dataframe.RevSort("dep_delay_min_MEAN"))
	if sorted.Err != nil {
		return sorted, fmt.Errorf("airline ranking: %w", sorted.Err)
	}

	if topN > 0 && sorted.Nrow() > topN {
		idx := make([]int, topN)
		for i := range idx {
			idx[i] = i
		}
		sorted = sorted.Subset(idx)
	}
	return sorted, nil
}

// MonthlyMeanDelay computes the mean departure delay per calendar month,
// in month order. Columns: month, dep_delay_min_MEAN.
func MonthlyMeanDelay(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	agg := df.GroupBy("month").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_MEAN},
		[]string{"dep_delay_min"},
	)
	if agg.Err != nil {
		return agg, fmt.Errorf("monthly aggregation: %w", agg.Err)
	}
	sorted := agg.Arrange(dataframe.Sort("month"))
	if sorted.Err != nil {
		return sorted, fmt.Errorf("monthly ordering: %w", sorted.Err)
	}
	return sorted, nil
}

// DailyCancellations is one day's cancellation count with its trailing
// rolling mean.
type DailyCancellations struct {
	Day     string
	Count   int
	Rolling float64
}

// CancellationSeries counts cancellations per day and attaches a trailing
// rolling mean over the given window. Days with no cancellations do not
// appear. The rolling mean uses however many days are available at the
// start of the series rather than padding with missing values.
func CancellationSeries(df dataframe.DataFrame, window int) ([]DailyCancellations, error) {
	cancelled := df.Filter(dataframe.F{
		Colname: "cancelled", Comparator: series.Eq, Comparando: "true",
	})
	if cancelled.Err != nil {
		return nil, fmt.Errorf("cancellation filter: %w", cancelled.Err)
	}
	if cancelled.Nrow() == 0 {
		return nil, nil
	}

	counts := cancelled.GroupBy("fl_date").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_COUNT},
		[]string{"cancelled"},
	)
	if counts.Err != nil {
		return nil, fmt.Errorf("cancellation counts: %w", counts.Err)
	}
	counts = counts.Arrange(dataframe.Sort("fl_date"))
	if counts.Err != nil {
		return nil, fmt.Errorf("cancellation ordering: %w", counts.Err)
	}

	days := counts.Col("fl_date").Records()
	values := counts.Col("cancelled_COUNT").Float()

	if window < 1 {
		window = 1
	}
	out := make([]DailyCancellations, len(days))
	var sum float64
	for i := range days {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = DailyCancellations{
			Day:     days[i],
			Count:   int(values[i]),
			Rolling: sum / float64(n),
		}
	}
	return out, nil
}
