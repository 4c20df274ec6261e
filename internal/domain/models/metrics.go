package models

// Metrics holds the computed vital statistics of a recipe
type Metrics struct {
	OG  float64 `json:"OG"`
	FG  float64 `json:"FG"`
	ABV float64 `json:"ABV"`
	IBU float64 `json:"IBU"`
	SRM float64 `json:"SRM"`
}

// Value returns the metric by name
func (m Metrics) Value(metric string) (float64, bool) {
	switch metric {
	case MetricOG:
		return m.OG, true
	case MetricFG:
		return m.FG, true
	case MetricABV:
		return m.ABV, true
	case MetricIBU:
		return m.IBU, true
	case MetricSRM:
		return m.SRM, true
	}
	return 0, false
}
