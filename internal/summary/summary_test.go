package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerodata/flightprep/internal/flight"
	"github.com/aerodata/flightprep/internal/pipeline"
)

func mergedFixture() []pipeline.MergedRecord {
	mk := func(day int, airline string, delay float64, cancelled bool) pipeline.MergedRecord {
		m := pipeline.MergedRecord{
			Flight: flight.Record{
				Date:        time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
				Airline:     airline,
				Origin:      "JFK",
				DepDelayMin: delay,
				Cancelled:   cancelled,
			},
			WeatherImpact: pipeline.ImpactClear,
		}
		m.DelayCategory = pipeline.DefaultOptions().Thresholds.DelayCategory(cancelled, delay)
		return m
	}

	return []pipeline.MergedRecord{
		mk(1, "AA", 10, false),
		mk(1, "AA", 30, false),
		mk(1, "UA", 90, false),
		mk(2, "UA", 0, true),
		mk(2, "DL", 0, false),
		mk(3, "DL", 20, true),
	}
}

func TestFrameAndOverall(t *testing.T) {
	df, err := Frame(mergedFixture())
	require.NoError(t, err)
	require.Equal(t, 6, df.Nrow())

	ov := Overall(df, 15)
	assert.Equal(t, 6, ov.Rows)
	assert.InDelta(t, 25.0, ov.MeanDepDelay, 1e-9)
	assert.InDelta(t, 15.0, ov.MedianDepDelay, 1e-9)
	// Delays over 15 min: 30, 90, 20.
	assert.InDelta(t, 50.0, ov.PctLongDelays, 1e-9)
	assert.Equal(t, 2, ov.Cancellations)
	assert.Zero(t, ov.WeatherImpacted)
}

func TestAirlineDelays(t *testing.T) {
	df, err := Frame(mergedFixture())
	require.NoError(t, err)

	ranked, err := AirlineDelays(df, 0)
	require.NoError(t, err)
	require.Equal(t, 3, ranked.Nrow())

	airlines := ranked.Col("airline").Records()
	means := ranked.Col("dep_delay_min_MEAN").Float()

	// Worst first: UA (45), AA (20), DL (10).
	assert.Equal(t, []string{"UA", "AA", "DL"}, airlines)
	assert.InDelta(t, 45.0, means[0], 1e-9)
	assert.InDelta(t, 20.0, means[1], 1e-9)
	assert.InDelta(t, 10.0, means[2], 1e-9)

	top, err := AirlineDelays(df, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, top.Nrow())
	assert.Equal(t, []string{"UA", "AA"}, top.Col("airline").Records())
}

func TestMonthlyMeanDelay(t *testing.T) {
	records := mergedFixture()
	records[0].Flight.Date = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	records[1].Flight.Date = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	df, err := Frame(records)
	require.NoError(t, err)

	monthly, err := MonthlyMeanDelay(df)
	require.NoError(t, err)
	require.Equal(t, 2, monthly.Nrow())

	months := monthly.Col("month").Records()
	means := monthly.Col("dep_delay_min_MEAN").Float()
	assert.Equal(t, []string{"2024-01", "2024-02"}, months)
	// January: 90, 0, 0, 20. February: 10, 30.
	assert.InDelta(t, 27.5, means[0], 1e-9)
	assert.InDelta(t, 20.0, means[1], 1e-9)
}

func TestCancellationSeries(t *testing.T) {
	df, err := Frame(mergedFixture())
	require.NoError(t, err)

	daily, err := CancellationSeries(df, 2)
	require.NoError(t, err)
	require.Len(t, daily, 2)

	assert.Equal(t, "2024-01-02", daily[0].Day)
	assert.Equal(t, 1, daily[0].Count)
	assert.InDelta(t, 1.0, daily[0].Rolling, 1e-9)

	assert.Equal(t, "2024-01-03", daily[1].Day)
	assert.Equal(t, 1, daily[1].Count)
	assert.InDelta(t, 1.0, daily[1].Rolling, 1e-9)
}

func TestCancellationSeriesRollingWindow(t *testing.T) {
	records := make([]pipeline.MergedRecord, 0, 6)
	counts := []int{3, 1, 2}
	for day, n := range counts {
		for i := 0; i < n; i++ {
			records = append(records, pipeline.MergedRecord{
				Flight: flight.Record{
					Date:      time.Date(2024, 1, day+1, 0, 0, 0, 0, time.UTC),
					Airline:   "AA",
					Origin:    "JFK",
					Cancelled: true,
				},
				DelayCategory: pipeline.CategoryCancelled,
				WeatherImpact: pipeline.ImpactUnknown,
			})
		}
	}

	df, err := Frame(records)
	require.NoError(t, err)

	daily, err := CancellationSeries(df, 2)
	require.NoError(t, err)
	require.Len(t, daily, 3)

	// Window shorter than the series start uses what is available.
	assert.InDelta(t, 3.0, daily[0].Rolling, 1e-9)
	assert.InDelta(t, 2.0, daily[1].Rolling, 1e-9)
	assert.InDelta(t, 1.5, daily[2].Rolling, 1e-9)
}

func TestCancellationSeriesEmpty(t *testing.T) {
	records := mergedFixture()[:3] // none cancelled
	df, err := Frame(records)
	require.NoError(t, err)

	daily, err := CancellationSeries(df, 30)
	require.NoError(t, err)
	assert.Empty(t, daily)
}
