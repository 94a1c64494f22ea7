package common

// ParseStats holds per-source counters for a parsing pass. Unparseable
// rows are dropped, not repaired, so FailedRows + SkippedEmptyRows +
// DroppedKeyRows accounts for every row that did not survive.
type ParseStats struct {
	TotalRowsRead      int64 // rows read from the CSV, header excluded
	SuccessfullyParsed int64 // rows converted to records
	FailedRows         int64 // rows dropped due to parse errors
	SkippedEmptyRows   int64 // blank rows skipped
	DroppedKeyRows     int64 // rows dropped in cleaning for missing key fields
}

// Retained returns the fraction of read rows that became records.
func (s ParseStats) Retained() float64 {
	if s.TotalRowsRead == 0 {
		return 1
	}
	return float64(s.SuccessfullyParsed) / float64(s.TotalRowsRead)
}
