package pipeline

// DelayCategory buckets a flight's departure delay.
type DelayCategory string

const (
	CategoryOnTime    DelayCategory = "on_time"
	CategoryMinor     DelayCategory = "minor"
	CategoryMajor     DelayCategory = "major"
	CategoryCancelled DelayCategory = "cancelled"
)

// WeatherImpact flags whether weather plausibly contributed to a delay or
// cancellation.
type WeatherImpact string

const (
	ImpactClear    WeatherImpact = "clear"
	ImpactImpacted WeatherImpact = "impacted"
	ImpactUnknown  WeatherImpact = "unknown"
)

// DelayCategory classifies a flight. Cancellation wins over any delay
// value; otherwise the delay is bucketed by the minor/major cutoffs.
func (t Thresholds) DelayCategory(cancelled bool, delayMin float64) DelayCategory {
	switch {
	case cancelled:
		return CategoryCancelled
	case delayMin <= t.MinorDelayMin:
		return CategoryOnTime
	case delayMin <= t.MajorDelayMin:
		return CategoryMinor
	default:
		return CategoryMajor
	}
}

// WeatherImpact classifies the weather conditions of a merged record.
// Rows without matched weather are unknown, never guessed. NaN fields
// fail every comparison and therefore never mark a row impacted.
func (t Thresholds) WeatherImpact(m *MergedRecord) WeatherImpact {
	if !m.HasWeather {
		return ImpactUnknown
	}
	w := &m.Weather
	if w.Precip >= t.PrecipIn || w.Visib <= t.VisibilityMi || w.WindGust >= t.WindGustMph {
		return ImpactImpacted
	}
	return ImpactClear
}

// derive computes the two derived fields for every merged record.
func (p *Pipeline) derive(merged []MergedRecord) {
	t := p.opts.Thresholds
	for i := range merged {
		m := &merged[i]
		m.DelayCategory = t.DelayCategory(m.Flight.Cancelled, m.Flight.DepDelayMin)
		m.WeatherImpact = t.WeatherImpact(m)
	}
}
