package export

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerodata/flightprep/internal/flight"
	"github.com/aerodata/flightprep/internal/pipeline"
	"github.com/aerodata/flightprep/internal/weather"
)

func sampleMerged() []pipeline.MergedRecord {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	wx := weather.NewRecord("JFK", date)
	wx.Temp = 32.5
	wx.Precip = 0.2
	wx.Visib = 2

	matched := pipeline.MergedRecord{
		Flight: flight.Record{
			Date:        date,
			Airline:     "AA",
			Number:      "100",
			TailNum:     "N123AA",
			Origin:      "JFK",
			Dest:        "LAX",
			SchedDep:    time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			ActualDep:   time.Date(2024, 1, 15, 9, 10, 0, 0, time.UTC),
			DepDelayMin: 10,
			ArrDelayMin: 5,
			Distance:    2475,
		},
		Weather:       wx,
		HasWeather:    true,
		DelayCategory: pipeline.CategoryOnTime,
		WeatherImpact: pipeline.ImpactImpacted,
	}

	unmatched := pipeline.MergedRecord{
		Flight: flight.Record{
			Date:        date,
			Airline:     "DL",
			Number:      "300",
			Origin:      "ORD",
			Dest:        "ATL",
			Cancelled:   true,
			DepDelayMin: 0,
			ArrDelayMin: 0,
			Distance:    606,
		},
		DelayCategory: pipeline.CategoryCancelled,
		WeatherImpact: pipeline.ImpactUnknown,
	}

	return []pipeline.MergedRecord{matched, unmatched}
}

func TestRowFrom(t *testing.T) {
	merged := sampleMerged()

	row := RowFrom(&merged[0])
	assert.Equal(t, "2024-01-15", row.FlDate)
	assert.Equal(t, "09:00", row.SchedDep)
	assert.Equal(t, "09:10", row.DepTime)
	assert.Empty(t, row.SchedArr)
	assert.True(t, row.HasWeather)
	require.NotNil(t, row.Temp)
	assert.Equal(t, 32.5, *row.Temp)
	// Field never observed: null even on a matched row.
	assert.Nil(t, row.Dewp)
	assert.Equal(t, "on_time", row.DelayCategory)

	row = RowFrom(&merged[1])
	assert.False(t, row.HasWeather)
	assert.Nil(t, row.Temp)
	assert.Nil(t, row.Visib)
	assert.True(t, row.Cancelled)
	assert.Equal(t, "unknown", row.WeatherImpact)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, sampleMerged()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])

	assert.Equal(t, "2024-01-15", rows[1][0])
	assert.Equal(t, "32.5", rows[1][14])
	// Missing weather writes empty fields.
	assert.Empty(t, rows[2][14])
	assert.Equal(t, "cancelled", rows[2][23])
}

func TestWriteCSVGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.gz")
	require.NoError(t, WriteCSV(path, sampleMerged()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	rows, err := csv.NewReader(gz).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	merged := sampleMerged()
	require.NoError(t, WriteParquet(path, merged))

	rows, err := ReadParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Rows(merged), rows)
}

// Exercises the read path across its internal batch boundary: every row
// carries a distinct optional value, so any pointer aliasing between
// batches shows up as a mismatch.
func TestParquetRoundTripLargeDataset(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	merged := make([]pipeline.MergedRecord, 2500)
	for i := range merged {
		wx := weather.NewRecord("JFK", date)
		wx.Temp = float64(i)
		merged[i] = pipeline.MergedRecord{
			Flight: flight.Record{
				Date:    date,
				Airline: "AA",
				Number:  strconv.Itoa(i),
				Origin:  "JFK",
				Dest:    "LAX",
			},
			Weather:       wx,
			HasWeather:    true,
			DelayCategory: pipeline.CategoryOnTime,
			WeatherImpact: pipeline.ImpactClear,
		}
	}

	path := filepath.Join(t.TempDir(), "large.parquet")
	require.NoError(t, WriteParquet(path, merged))

	rows, err := ReadParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2500)

	for i := range rows {
		assert.Equal(t, strconv.Itoa(i), rows[i].FlightNum, "row %d", i)
		require.NotNil(t, rows[i].Temp, "row %d", i)
		require.Equal(t, float64(i), *rows[i].Temp, "row %d", i)
	}
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(math.NaN()))
	v := optional(1.5)
	require.NotNil(t, v)
	assert.Equal(t, 1.5, *v)
}
