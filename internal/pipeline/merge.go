package pipeline

import (
	"fmt"

	"github.com/aerodata/flightprep/internal/common"
	"github.com/aerodata/flightprep/internal/flight"
	"github.com/aerodata/flightprep/internal/weather"
)

// MergedRecord is one flight joined with its same-day, same-airport
// weather. Weather is only meaningful when HasWeather is true; unmatched
// flights are retained with the weather fields absent.
type MergedRecord struct {
	Flight     flight.Record
	Weather    weather.Record
	HasWeather bool

	DelayCategory DelayCategory
	WeatherImpact WeatherImpact
}

// merge left-joins flights onto daily weather by (date, origin airport).
// The merge key must resolve to at most one weather row; duplicates raise
// a warning and the first row wins.
func (p *Pipeline) merge(flights []flight.Record, daily []weather.Record) ([]MergedRecord, []common.Warning) {
	var warnings []common.Warning

	index := make(map[weather.Key]*weather.Record, len(daily))
	dupes := 0
	for i := range daily {
		key := daily[i].Key()
		if _, ok := index[key]; ok {
			dupes++
			continue
		}
		index[key] = &daily[i]
	}
	if dupes > 0 {
		warnings = append(warnings, common.Warning{
			Code: "DUPLICATE_WEATHER_KEY",
			Message: fmt.Sprintf(
				"%d weather rows share a (date, airport) key with an earlier row; first row kept", dupes),
		})
	}

	merged := make([]MergedRecord, 0, len(flights))
	for i := range flights {
		m := MergedRecord{Flight: flights[i]}
		if wx, ok := index[weather.KeyOf(flights[i].Origin, flights[i].Date)]; ok {
			m.Weather = *wx
			m.HasWeather = true
		}
		merged = append(merged, m)
	}
	return merged, warnings
}
