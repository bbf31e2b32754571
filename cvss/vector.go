package cvss

import (
	"strings"
)

// Prefix is the version tag that may lead a CVSS v4.0 vector string.
const Prefix = "CVSS:4.0/"

// Vector is the set of metric values selected by a vector string.
// Only known metrics holding a value from their domain are kept.
type Vector struct {
	values  map[Metric]string
	skipped []string
}

// NewVector returns an empty vector.
func NewVector() *Vector {
	return &Vector{values: make(map[Metric]string)}
}

// ParseVector reads a vector string such as "CVSS:4.0/AV:N/AC:L/...".
// Parsing is permissive: fragments with an unknown metric or a value outside
// the metric's domain are dropped and reported by Skipped. When a metric
// appears more than once, the last valid occurrence wins.
func ParseVector(vector string) *Vector {
	v := NewVector()
	body := strings.TrimPrefix(vector, Prefix)
	for _, part := range strings.Split(body, "/") {
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			v.skipped = append(v.skipped, part)
			continue
		}
		m, known := ParseMetric(name)
		if !known || !m.Accepts(value) {
			v.skipped = append(v.skipped, part)
			continue
		}
		v.values[m] = value
	}
	return v
}

// Skipped returns the fragments discarded while parsing, in input order.
func (v *Vector) Skipped() []string {
	return append([]string(nil), v.skipped...)
}

// Get returns the value selected for m as written in the vector.
func (v *Vector) Get(m Metric) (string, bool) {
	val, ok := v.values[m]
	return val, ok
}

// Set selects value for m. It returns ErrInvalidValue if value is outside
// the domain of m.
func (v *Vector) Set(m Metric, value string) error {
	if !m.Accepts(value) {
		return &ValueError{Metric: m, Value: value}
	}
	v.values[m] = value
	return nil
}

// Defined reports whether m was given a value other than X.
func (v *Vector) Defined(m Metric) bool {
	val, ok := v.values[m]
	return ok && val != NotDefined
}

// Clone returns an independent copy of v.
func (v *Vector) Clone() *Vector {
	c := NewVector()
	for m, val := range v.values {
		c.values[m] = val
	}
	c.skipped = append(c.skipped, v.skipped...)
	return c
}

// String renders v with the version prefix and metrics in canonical order.
func (v *Vector) String() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(Prefix, "/"))
	for m := Metric(0); m < numMetrics; m++ {
		val, ok := v.values[m]
		if !ok {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(m.String())
		sb.WriteByte(':')
		sb.WriteString(val)
	}
	return sb.String()
}

// TrimVector drops "/METRIC:X" fragments from a vector string. It only
// affects display; X fragments never change the score.
func TrimVector(vector string) string {
	parts := strings.Split(vector, "/")
	kept := parts[:0]
	for i, part := range parts {
		if i > 0 && strings.HasSuffix(part, ":"+NotDefined) {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}

// parseTemplate reads one of the built-in partial vectors.
func parseTemplate(tmpl string) map[Metric]string {
	out := make(map[Metric]string)
	for _, part := range strings.Split(tmpl, "/") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, ":")
		m, ok := ParseMetric(name)
		if !ok || (!m.Accepts(value) && value != "S") {
			panic("cvss: bad max vector template " + tmpl)
		}
		out[m] = value
	}
	return out
}
