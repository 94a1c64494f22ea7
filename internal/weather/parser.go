package weather

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aerodata/flightprep/internal/common"
	"github.com/aerodata/flightprep/pkg/logger"
)

// MaxErrorsToLog throttles per-row parse error logging.
const MaxErrorsToLog = 10

// Parser reads weather CSVs into Records.
type Parser struct {
	log *logger.Logger
}

// NewParser creates a weather parser.
func NewParser(log *logger.Logger) *Parser {
	return &Parser{log: log.Named("weather-parser")}
}

type columns struct {
	airport, date, year, month, day int
	numeric                         [NumericCount]int
}

// Station identifier and date aliases, compared upper-cased. Numeric
// columns keep the nycflights/NOAA names.
var (
	airportAliases = []string{"ORIGIN", "STATION", "AIRPORT"}
	dateAliases    = []string{"DATE", "TIME_HOUR"}
	numericAliases = [NumericCount][]string{
		{"TEMP", "TEMPERATURE", "TAVG"},
		{"DEWP", "DEW_POINT"},
		{"HUMID", "HUMIDITY"},
		{"WIND_DIR", "WDIR"},
		{"WIND_SPEED", "WSPD"},
		{"WIND_GUST", "GUST"},
		{"PRECIP", "PRCP", "PRECIPITATION"},
		{"PRESSURE", "SLP"},
		{"VISIB", "VISIBILITY", "VIS"},
	}
)

// ParseFile reads and parses a weather CSV (plain or .gz).
func (p *Parser) ParseFile(path string, progress *common.Progress) ([]Record, common.ParseStats, error) {
	f, err := common.OpenData(path)
	if err != nil {
		return nil, common.ParseStats{}, &common.FileError{Path: path, Err: err}
	}
	defer f.Close()

	if progress != nil {
		progress.AddBytes(uint64(f.Size()))
	}

	records, stats, err := p.Parse(f, progress)
	if err != nil {
		if se, ok := err.(*common.SchemaError); ok {
			se.Path = path
			return nil, stats, se
		}
		return nil, stats, &common.FileError{Path: path, Err: err}
	}
	return records, stats, nil
}

// Parse reads weather records from r. The first row must be a header.
func (p *Parser) Parse(r io.Reader, progress *common.Progress) ([]Record, common.ParseStats, error) {
	var stats common.ParseStats

	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, stats, err
	}

	var records []Record
	errorCount := 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.TotalRowsRead++
			stats.FailedRows++
			errorCount++
			if errorCount <= MaxErrorsToLog {
				p.log.Warn("CSV read error, row dropped",
					logger.Int64("row", stats.TotalRowsRead), logger.Error(err))
			}
			continue
		}

		stats.TotalRowsRead++
		if isEmptyRow(row) {
			stats.SkippedEmptyRows++
			continue
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			stats.FailedRows++
			errorCount++
			if errorCount <= MaxErrorsToLog {
				p.log.Warn("unparseable weather row dropped",
					logger.Int64("row", stats.TotalRowsRead), logger.Error(err))
			}
			continue
		}

		stats.SuccessfullyParsed++
		records = append(records, rec)

		if progress != nil {
			progress.AddRows(1)
		}
	}

	if errorCount > MaxErrorsToLog {
		p.log.Warn("additional parse errors suppressed",
			logger.Int("suppressed", errorCount-MaxErrorsToLog))
	}

	return records, stats, nil
}

func resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	find := func(aliases []string) int {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		airport: find(airportAliases),
		date:    find(dateAliases),
		year:    find([]string{"YEAR"}),
		month:   find([]string{"MONTH"}),
		day:     find([]string{"DAY"}),
	}
	for i, aliases := range numericAliases {
		cols.numeric[i] = find(aliases)
	}

	if cols.airport < 0 {
		return cols, &common.SchemaError{Column: "ORIGIN (or STATION)"}
	}
	if cols.date < 0 && (cols.year < 0 || cols.month < 0 || cols.day < 0) {
		return cols, &common.SchemaError{Column: "DATE (or YEAR/MONTH/DAY)"}
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (Record, error) {
	date, err := parseDate(row, cols)
	if err != nil {
		return Record{}, err
	}

	rec := NewRecord(field(row, cols.airport), date)
	for i, ptr := range rec.Numerics() {
		*ptr = parseFloatOrNaN(field(row, cols.numeric[i]))
	}
	return rec, nil
}

func parseDate(row []string, cols columns) (time.Time, error) {
	if cols.date >= 0 {
		s := field(row, cols.date)
		if len(s) >= 10 {
			s = s[:10]
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid observation date %q: %w", s, err)
		}
		return t, nil
	}

	y, err := strconv.Atoi(field(row, cols.year))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year: %w", err)
	}
	m, err := strconv.Atoi(field(row, cols.month))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month: %w", err)
	}
	d, err := strconv.Atoi(field(row, cols.day))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day: %w", err)
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("date out of range: %04d-%02d-%02d", y, m, d)
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloatOrNaN(s string) float64 {
	if s == "" || strings.EqualFold(s, "na") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isEmptyRow(row []string) bool {
	if len(row) == 0 {
		return true
	}
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
