package flight

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerodata/flightprep/internal/common"
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

func TestParseClock(t *testing.T) {
	date := day(2024, 1, 15)

	for _, tc := range []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"530", time.Date(2024, 1, 15, 5, 30, 0, 0, time.UTC), true},
		{"1530", time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC), true},
		{"5", time.Date(2024, 1, 15, 0, 5, 0, 0, time.UTC), true},
		{"0005", time.Date(2024, 1, 15, 0, 5, 0, 0, time.UTC), true},
		{"1530.0", time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC), true},
		{"2400", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), true},
		{"2430", time.Time{}, false},
		{"2500", time.Time{}, false},
		{"abc", time.Time{}, false},
		{"", time.Time{}, false},
		{"12345", time.Time{}, false},
	} {
		got, ok := ParseClock(date, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestParseBTSLayout(t *testing.T) {
	csv := strings.Join([]string{
		"FL_DATE,OP_CARRIER,OP_CARRIER_FL_NUM,TAIL_NUM,ORIGIN,DEST,CRS_DEP_TIME,DEP_TIME,CRS_ARR_TIME,ARR_TIME,DEP_DELAY,ARR_DELAY,DISTANCE,CANCELLED",
		"2024-01-15,AA,100,N123AA,JFK,LAX,0900,0910,1200,1215,10,15,2475,0",
		"2024-01-15,UA,200,N456UA,EWR,SFO,0700,,1030,,,,2565,1.0",
	}, "\n")

	records, stats, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), stats.TotalRowsRead)
	assert.Equal(t, int64(2), stats.SuccessfullyParsed)

	r := records[0]
	assert.Equal(t, day(2024, 1, 15), r.Date)
	assert.Equal(t, "AA", r.Airline)
	assert.Equal(t, "100", r.Number)
	assert.Equal(t, "JFK", r.Origin)
	assert.Equal(t, "LAX", r.Dest)
	assert.Equal(t, 10.0, r.DepDelayMin)
	assert.Equal(t, 15.0, r.ArrDelayMin)
	assert.Equal(t, 2475.0, r.Distance)
	assert.False(t, r.Cancelled)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), r.SchedDep)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 10, 0, 0, time.UTC), r.ActualDep)

	// CANCELLED encoded as a float, no actual times or delays.
	c := records[1]
	assert.True(t, c.Cancelled)
	assert.True(t, c.ActualDep.IsZero())
	assert.False(t, c.HasDepDelay())
	assert.False(t, c.HasArrDelay())
}

func TestParseYearMonthDayLayout(t *testing.T) {
	csv := strings.Join([]string{
		"YEAR,MONTH,DAY,CARRIER,FLIGHT,ORIGIN,DEST,DEP_DELAY",
		"2013,6,1,B6,507,JFK,FLL,-4",
	}, "\n")

	records, _, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, day(2013, 6, 1), records[0].Date)
	assert.Equal(t, "B6", records[0].Airline)
	assert.Equal(t, -4.0, records[0].DepDelayMin)
}

func TestParseCancellationInference(t *testing.T) {
	// No cancellation column: a row with neither actual departure nor
	// arrival counts as cancelled.
	csv := strings.Join([]string{
		"FL_DATE,AIRLINE,ORIGIN,DEST,CRS_DEP_TIME,DEP_TIME,ARR_TIME",
		"2024-02-01,DL,ATL,MCO,0800,0805,1000",
		"2024-02-01,DL,ATL,MIA,0900,,",
	}, "\n")

	records, _, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].Cancelled)
	assert.True(t, records[1].Cancelled)
}

func TestParseDelayReconstruction(t *testing.T) {
	// No DEP_DELAY column: the delay comes from sched vs actual departure.
	csv := strings.Join([]string{
		"FL_DATE,AIRLINE,ORIGIN,CRS_DEP_TIME,DEP_TIME",
		"2024-02-01,WN,DAL,0900,0930",
	}, "\n")

	records, _, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 30.0, records[0].DepDelayMin)
}

func TestParseBadRowsDropped(t *testing.T) {
	csv := strings.Join([]string{
		"FL_DATE,AIRLINE,ORIGIN",
		"2024-01-15,AA,JFK",
		"not-a-date,AA,JFK",
		",,",
		"2024-01-16,UA,EWR",
	}, "\n")

	records, stats, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int64(4), stats.TotalRowsRead)
	assert.Equal(t, int64(2), stats.SuccessfullyParsed)
	assert.Equal(t, int64(1), stats.FailedRows)
	assert.Equal(t, int64(1), stats.SkippedEmptyRows)
}

func TestParseMissingValues(t *testing.T) {
	csv := strings.Join([]string{
		"FL_DATE,AIRLINE,ORIGIN,DEST,DEP_DELAY,DISTANCE",
		"2024-01-15,,JFK,,NA,",
	}, "\n")

	records, _, err := testParser(t).Parse(strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Empty(t, r.Airline)
	assert.Empty(t, r.Dest)
	assert.True(t, math.IsNaN(r.DepDelayMin))
	assert.True(t, math.IsNaN(r.Distance))
	assert.True(t, r.HasKey())
}

func TestParseSchemaErrors(t *testing.T) {
	_, _, err := testParser(t).Parse(strings.NewReader("FL_DATE,AIRLINE\n2024-01-15,AA\n"), nil)
	var se *common.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Column, "ORIGIN")

	_, _, err = testParser(t).Parse(strings.NewReader("AIRLINE,ORIGIN\nAA,JFK\n"), nil)
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Column, "FL_DATE")
}

func TestParseFileMissing(t *testing.T) {
	_, _, err := testParser(t).ParseFile("does/not/exist.csv", nil)
	var fe *common.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "does/not/exist.csv", fe.Path)
}
