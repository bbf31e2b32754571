package epss

import "context-cvss4/cvss"

const (
	ThresholdUnreported = 0.05
	ThresholdAttacked   = 0.50
)

// EPSSToExploitMaturity maps an EPSS score (0-1) to CVSS v4.0 Exploit Maturity (U, P, A).
func EPSSToExploitMaturity(score float64) string {
	switch {
	case score < 0:
		return cvss.NotDefined
	case score < ThresholdUnreported:
		return "U"
	case score < ThresholdAttacked:
		return "P"
	default:
		return "A"
	}
}
