package pipeline

import (
	"math"

	"github.com/aerodata/flightprep/internal/common"
	"github.com/aerodata/flightprep/internal/flight"
	"github.com/aerodata/flightprep/internal/weather"
	"github.com/aerodata/flightprep/pkg/logger"
)

// UnknownValue is the sentinel imputed into missing categorical fields.
const UnknownValue = "unknown"

// cleanFlights applies the fixed missing-value policy:
//   - rows missing a merge key field (date, origin) are dropped
//   - missing categoricals become "unknown"
//   - missing delay minutes become 0 for cancelled flights, else the
//     column mean over the observed values
//   - missing distance becomes the column mean
//
// The slice is filtered in place.
func (p *Pipeline) cleanFlights(records []flight.Record, stats *common.ParseStats) []flight.Record {
	kept := records[:0]
	for i := range records {
		if !records[i].HasKey() {
			stats.DroppedKeyRows++
			continue
		}
		kept = append(kept, records[i])
	}
	if stats.DroppedKeyRows > 0 {
		p.log.Info("flight rows dropped for missing merge key",
			logger.Int64("dropped", stats.DroppedKeyRows))
	}

	depMean := meanOf(kept, func(r *flight.Record) float64 { return r.DepDelayMin })
	arrMean := meanOf(kept, func(r *flight.Record) float64 { return r.ArrDelayMin })
	distMean := meanOf(kept, func(r *flight.Record) float64 { return r.Distance })

	for i := range kept {
		r := &kept[i]
		if r.Airline == "" {
			r.Airline = UnknownValue
		}
		if r.Dest == "" {
			r.Dest = UnknownValue
		}
		if r.TailNum == "" {
			r.TailNum = UnknownValue
		}
		if r.Number == "" {
			r.Number = UnknownValue
		}

		if !r.HasDepDelay() {
			if r.Cancelled {
				r.DepDelayMin = 0
			} else {
				r.DepDelayMin = depMean
			}
		}
		if !r.HasArrDelay() {
			if r.Cancelled {
				r.ArrDelayMin = 0
			} else {
				r.ArrDelayMin = arrMean
			}
		}
		if math.IsNaN(r.Distance) {
			r.Distance = distMean
		}
	}
	return kept
}

// imputeWeather fills missing daily numerics with the column mean over
// the days where the field was observed. A field observed on no day at
// all stays NaN and exports as null.
func (p *Pipeline) imputeWeather(daily []weather.Record) {
	var sums, counts [weather.NumericCount]float64
	for i := range daily {
		for j, ptr := range daily[i].Numerics() {
			if !math.IsNaN(*ptr) {
				sums[j] += *ptr
				counts[j]++
			}
		}
	}

	var means [weather.NumericCount]float64
	for j := range means {
		if counts[j] > 0 {
			means[j] = sums[j] / counts[j]
		} else {
			means[j] = math.NaN()
		}
	}

	for i := range daily {
		for j, ptr := range daily[i].Numerics() {
			if math.IsNaN(*ptr) {
				*ptr = means[j]
			}
		}
	}
}

// meanOf computes the mean of a flight column over its present values.
// Returns 0 when the column is empty, so imputation stays defined.
func meanOf(records []flight.Record, col func(*flight.Record) float64) float64 {
	var sum float64
	var n int
	for i := range records {
		v := col(&records[i])
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
