package weather

import (
	"math"
	"sort"
)

// Aggregate collapses hourly observations into one record per
// (date, airport) by taking the mean of each numeric field over the
// observations where it is present. A field missing from every
// observation of a day stays NaN. Records without a merge key are
// skipped and counted in the return value.
//
// The result is sorted by (date, airport) so downstream passes are
// deterministic regardless of input order.
func Aggregate(records []Record) (daily []Record, skipped int) {
	type acc struct {
		rec    Record
		sums   [NumericCount]float64
		counts [NumericCount]int
	}

	byKey := make(map[Key]*acc)
	for i := range records {
		r := &records[i]
		if !r.HasKey() {
			skipped++
			continue
		}

		key := r.Key()
		a, ok := byKey[key]
		if !ok {
			a = &acc{rec: NewRecord(r.Airport, r.Date)}
			byKey[key] = a
		}
		for j, ptr := range r.Numerics() {
			if !math.IsNaN(*ptr) {
				a.sums[j] += *ptr
				a.counts[j]++
			}
		}
	}

	daily = make([]Record, 0, len(byKey))
	for _, a := range byKey {
		for j, ptr := range a.rec.Numerics() {
			if a.counts[j] > 0 {
				*ptr = a.sums[j] / float64(a.counts[j])
			}
		}
		daily = append(daily, a.rec)
	}

	sort.Slice(daily, func(i, j int) bool {
		if !daily[i].Date.Equal(daily[j].Date) {
			return daily[i].Date.Before(daily[j].Date)
		}
		return daily[i].Airport < daily[j].Airport
	})
	return daily, skipped
}
