// Threat and Environmental metrics can be layered onto a published base
// vector to tailor its score to a specific deployment.
// If you're not familiar with the CVSS v4.0 metric groups
// refer to: https://www.first.org/cvss/v4.0/specification-document#Environmental-Metrics

package cvss

import (
	"fmt"
	"strings"
)

// MetricsOptions defines the values to apply to the vector. Empty fields
// leave the vector untouched.
type MetricsOptions struct {
	E     string `json:"e,omitempty" yaml:"e,omitempty"`
	CR    string `json:"cr,omitempty" yaml:"cr,omitempty"`
	IR    string `json:"ir,omitempty" yaml:"ir,omitempty"`
	AR    string `json:"ar,omitempty" yaml:"ar,omitempty"`
	MAV   string `json:"mav,omitempty" yaml:"mav,omitempty"`
	MAC   string `json:"mac,omitempty" yaml:"mac,omitempty"`
	MAT   string `json:"mat,omitempty" yaml:"mat,omitempty"`
	MPR   string `json:"mpr,omitempty" yaml:"mpr,omitempty"`
	MUI   string `json:"mui,omitempty" yaml:"mui,omitempty"`
	MVC   string `json:"mvc,omitempty" yaml:"mvc,omitempty"`
	MVI   string `json:"mvi,omitempty" yaml:"mvi,omitempty"`
	MVA   string `json:"mva,omitempty" yaml:"mva,omitempty"`
	MSC   string `json:"msc,omitempty" yaml:"msc,omitempty"`
	MSI   string `json:"msi,omitempty" yaml:"msi,omitempty"`
	MSA   string `json:"msa,omitempty" yaml:"msa,omitempty"`
	Smart bool   `json:"smart,omitempty" yaml:"smart,omitempty"`
}

// Values returns the non-empty options keyed by metric, in canonical order.
func (o MetricsOptions) Values() []MetricValue {
	all := []MetricValue{
		{E, o.E},
		{CR, o.CR}, {IR, o.IR}, {AR, o.AR},
		{MAV, o.MAV}, {MAC, o.MAC}, {MAT, o.MAT}, {MPR, o.MPR}, {MUI, o.MUI},
		{MVC, o.MVC}, {MVI, o.MVI}, {MVA, o.MVA},
		{MSC, o.MSC}, {MSI, o.MSI}, {MSA, o.MSA},
	}
	out := all[:0]
	for _, mv := range all {
		if mv.Value != "" {
			mv.Value = strings.ToUpper(mv.Value)
			out = append(out, mv)
		}
	}
	return out
}

// MetricValue pairs a metric with one of its values.
type MetricValue struct {
	Metric Metric
	Value  string
}

// ApplyMetrics takes a base vector and applies the given options, returning
// the tailored vector in canonical order.
func ApplyMetrics(baseVectorStr string, opts MetricsOptions) (string, error) {
	if err := checkVersion(baseVectorStr); err != nil {
		return "", err
	}
	v := ParseVector(baseVectorStr)
	for _, mv := range opts.Values() {
		if !shouldApplyMetric(mv.Metric, mv.Value, v, opts.Smart) {
			continue
		}
		if err := v.Set(mv.Metric, mv.Value); err != nil {
			return "", fmt.Errorf("apply %s: %w", mv.Metric, err)
		}
	}
	return v.String(), nil
}

// shouldApplyMetric decides whether a modified metric is applied in Smart
// mode: a modified value may lower the severity the base vector asserts but
// never raise it.
func shouldApplyMetric(m Metric, value string, v *Vector, smart bool) bool {
	if value == NotDefined || !smart {
		return true
	}
	// Business requirements and threat intel are always applied.
	base, ok := m.Base()
	if !ok {
		return true
	}
	// Safety only exists as a modified value.
	if value == "S" {
		return true
	}
	baseVal, ok := v.Get(base)
	if !ok || !base.Accepts(value) {
		return true
	}
	return level(base, value) >= level(base, baseVal)
}
