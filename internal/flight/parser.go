package flight

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

// Parser reads flight CSVs into Records.
type Parser struct {
	log *logger.Logger
}

// NewParser creates a flight parser.
func NewParser(log *logger.Logger) *Parser {
	return &Parser{log: log.Named("flight-parser")}
}

// columns holds resolved header indices, -1 when absent.
type columns struct {
	flDate, year, month, day             int
	airline, number, tail                int
	origin, dest                         int
	schedDep, depTime, schedArr, arrTime int
	depDelay, arrDelay, distance         int
	cancelled                            int
}

// headerAliases maps each logical field to accepted column names, in
// priority order. Header names are compared upper-cased.
var headerAliases = map[string][]string{
	"flDate":   {"FL_DATE", "FLIGHT_DATE", "DATE"},
	"year":     {"YEAR"},
	"month":    {"MONTH"},
	"day":      {"DAY"},
	"airline":  {"AIRLINE", "CARRIER", "OP_CARRIER"},
	"number":   {"FL_NUM", "FLIGHT", "FL_NUMBER", "OP_CARRIER_FL_NUM"},
	"tail":     {"TAIL_NUM", "TAILNUM"},
	"origin":   {"ORIGIN"},
	"dest":     {"DEST", "DESTINATION"},
	"schedDep": {"CRS_DEP_TIME", "SCHED_DEP_TIME"},
	"depTime":  {"DEP_TIME"},
	"schedArr": {"CRS_ARR_TIME", "SCHED_ARR_TIME"},
	"arrTime":  {"ARR_TIME"},
	"depDelay": {"DEP_DELAY", "DEP_DELAY_MIN"},
	"arrDelay": {"ARR_DELAY", "ARR_DELAY_MIN"},
	"distance": {"DISTANCE"},
}

// ParseFile reads and parses a flight CSV (plain or .gz).
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

// Parse reads flight records from r. The first row must be a header.
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
				p.log.Warn("unparseable flight row dropped",
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

	find := func(field string) int {
		for _, alias := range headerAliases[field] {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		flDate:    find("flDate"),
		year:      find("year"),
		month:     find("month"),
		day:       find("day"),
		airline:   find("airline"),
		number:    find("number"),
		tail:      find("tail"),
		origin:    find("origin"),
		dest:      find("dest"),
		schedDep:  find("schedDep"),
		depTime:   find("depTime"),
		schedArr:  find("schedArr"),
		arrTime:   find("arrTime"),
		depDelay:  find("depDelay"),
		arrDelay:  find("arrDelay"),
		distance:  find("distance"),
		cancelled: -1,
	}

	// Cancellation column is matched by substring, as the name varies
	// (CANCELLED, CANCELLATION, CANCEL_FLAG).
	for name, i := range index {
		if strings.Contains(name, "CANCEL") {
			cols.cancelled = i
			break
		}
	}

	if cols.origin < 0 {
		return cols, &common.SchemaError{Column: "ORIGIN"}
	}
	if cols.flDate < 0 && (cols.year < 0 || cols.month < 0 || cols.day < 0) {
		return cols, &common.SchemaError{Column: "FL_DATE (or YEAR/MONTH/DAY)"}
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (Record, error) {
	date, err := parseDate(row, cols)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Date:        date,
		Airline:     field(row, cols.airline),
		Number:      field(row, cols.number),
		TailNum:     field(row, cols.tail),
		Origin:      field(row, cols.origin),
		Dest:        field(row, cols.dest),
		DepDelayMin: parseFloatOrNaN(field(row, cols.depDelay)),
		ArrDelayMin: parseFloatOrNaN(field(row, cols.arrDelay)),
		Distance:    parseFloatOrNaN(field(row, cols.distance)),
	}

	rec.SchedDep, _ = ParseClock(date, field(row, cols.schedDep))
	rec.ActualDep, _ = ParseClock(date, field(row, cols.depTime))
	rec.SchedArr, _ = ParseClock(date, field(row, cols.schedArr))
	rec.ActualArr, _ = ParseClock(date, field(row, cols.arrTime))

	if cols.cancelled >= 0 {
		rec.Cancelled = parseFlag(field(row, cols.cancelled))
	} else {
		// No explicit column: a flight with neither an actual departure
		// nor an actual arrival is treated as cancelled.
		rec.Cancelled = rec.ActualDep.IsZero() && rec.ActualArr.IsZero()
	}

	// Delay minutes can be reconstructed when the source omits them.
	if !rec.HasDepDelay() && !rec.SchedDep.IsZero() && !rec.ActualDep.IsZero() {
		rec.DepDelayMin = rec.ActualDep.Sub(rec.SchedDep).Minutes()
	}

	return rec, nil
}

func parseDate(row []string, cols columns) (time.Time, error) {
	if cols.flDate >= 0 {
		s := field(row, cols.flDate)
		if len(s) >= 10 {
			s = s[:10]
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid flight date %q: %w", s, err)
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

// ParseClock converts an HHMM-style value (530, 1530, "0005") into a full
// timestamp on the given date. 2400 rolls over to midnight the next day.
// Returns false for empty or non-numeric values.
func ParseClock(date time.Time, s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	if s == "" || date.IsZero() {
		return time.Time{}, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, false
		}
	}
	if len(s) > 4 {
		return time.Time{}, false
	}
	for len(s) < 4 {
		s = "0" + s
	}

	hh, _ := strconv.Atoi(s[:2])
	mm, _ := strconv.Atoi(s[2:])
	if hh == 24 && mm == 0 {
		date = date.AddDate(0, 0, 1)
		hh = 0
	}
	if hh > 23 || mm > 59 {
		return time.Time{}, false
	}

	y, mo, d := date.Date()
	return time.Date(y, mo, d, hh, mm, 0, 0, time.UTC), true
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

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true
	}
	// BTS files encode cancellation as a float count.
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v > 0
	}
	return false
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
