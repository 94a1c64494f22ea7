package weather

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerodata/flightprep/pkg/logger"
)

func testParser(t *testing.T) *Parser {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)
	return NewParser(log)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseNycflightsLayout(t *testing.T) {
	csv := strings.Join([]string{
		"origin,time_hour,temp,dewp,humid,wind_dir,wind_speed,wind_gust,precip,pressure,visib",
		"EWR,2013-01-01T06:00:00Z,39.02,26.06,59.37,270,10.36,,0,1012,10",
	}, "\n")

	records, stats, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), stats.SuccessfullyParsed)

	r := records[0]
	assert.Equal(t, "EWR", r.Airport)
	assert.Equal(t, day(2013, 1, 1), r.Date)
	assert.Equal(t, 39.02, r.Temp)
	assert.Equal(t, 270.0, r.WindDir)
	assert.True(t, math.IsNaN(r.WindGust))
	assert.Equal(t, 10.0, r.Visib)
	assert.True(t, r.HasKey())
}

func TestParseNoaaAliases(t *testing.T) {
	csv := strings.Join([]string{
		"STATION,DATE,TAVG,PRCP,GUST,VIS",
		"JFK,2024-03-01,55.1,0.25,41,2.5",
	}, "\n")

	records, _, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "JFK", r.Airport)
	assert.Equal(t, 55.1, r.Temp)
	assert.Equal(t, 0.25, r.Precip)
	assert.Equal(t, 41.0, r.WindGust)
	assert.Equal(t, 2.5, r.Visib)
}

func TestAggregateDailyMeans(t *testing.T) {
	d := day(2024, 1, 15)
	obs := []Record{
		obsWith("JFK", d, 30, 0.1),
		obsWith("JFK", d, 40, 0.3),
		obsWith("LGA", d, 50, math.NaN()),
		obsWith("JFK", day(2024, 1, 16), 20, 0),
	}

	daily, skipped := Aggregate(obs)
	require.Len(t, daily, 3)
	assert.Zero(t, skipped)

	// Sorted by (date, airport).
	assert.Equal(t, "JFK", daily[0].Airport)
	assert.Equal(t, d, daily[0].Date)
	assert.InDelta(t, 35.0, daily[0].Temp, 1e-9)
	assert.InDelta(t, 0.2, daily[0].Precip, 1e-9)

	assert.Equal(t, "LGA", daily[1].Airport)
	assert.Equal(t, 50.0, daily[1].Temp)
	// Never observed for LGA that day.
	assert.True(t, math.IsNaN(daily[1].Precip))

	assert.Equal(t, day(2024, 1, 16), daily[2].Date)
	assert.Equal(t, 20.0, daily[2].Temp)
}

func TestAggregateSkipsNoKeyRows(t *testing.T) {
	obs := []Record{
		obsWith("", day(2024, 1, 15), 30, 0),
		obsWith("JFK", time.Time{}, 30, 0),
		obsWith("JFK", day(2024, 1, 15), 30, 0),
	}

	daily, skipped := Aggregate(obs)
	assert.Len(t, daily, 1)
	assert.Equal(t, 2, skipped)
}

func TestKeyOf(t *testing.T) {
	d := day(2024, 1, 15)
	r := NewRecord("JFK", d)
	assert.Equal(t, KeyOf("JFK", d), r.Key())
	assert.Equal(t, "2024-01-15", r.Key().Day)
}

func obsWith(airport string, date time.Time, temp, precip float64) Record {
	r := NewRecord(airport, date)
	r.Temp = temp
	r.Precip = precip
	return r
}
