package cvss

// Metric identifies a CVSS v4.0 metric by its abbreviation.
type Metric int

const (
	// Base metrics.
	AV Metric = iota
	AC
	AT
	PR
	UI
	VC
	VI
	VA
	SC
	SI
	SA
	// Threat metrics.
	E
	// Environmental security requirements.
	CR
	IR
	AR
	// Environmental modified base metrics.
	MAV
	MAC
	MAT
	MPR
	MUI
	MVC
	MVI
	MVA
	MSC
	MSI
	MSA
	// Supplemental metrics, accepted but never scored.
	S
	AU
	R
	V
	RE
	U

	numMetrics
)

// Group is the metric group a Metric belongs to.
type Group string

const (
	GroupBase          Group = "base"
	GroupThreat        Group = "threat"
	GroupEnvironmental Group = "environmental"
	GroupSupplemental  Group = "supplemental"
)

type metricInfo struct {
	name   string
	group  Group
	values []string
}

// metricInfos lists every metric in canonical vector order along with its
// valid values. Optional metrics carry X (not defined) in their domain.
var metricInfos = [numMetrics]metricInfo{
	AV: {"AV", GroupBase, []string{"N", "A", "L", "P"}},
	AC: {"AC", GroupBase, []string{"L", "H"}},
	AT: {"AT", GroupBase, []string{"N", "P"}},
	PR: {"PR", GroupBase, []string{"N", "L", "H"}},
	UI: {"UI", GroupBase, []string{"N", "P", "A"}},
	VC: {"VC", GroupBase, []string{"H", "L", "N"}},
	VI: {"VI", GroupBase, []string{"H", "L", "N"}},
	VA: {"VA", GroupBase, []string{"H", "L", "N"}},
	SC: {"SC", GroupBase, []string{"H", "L", "N"}},
	SI: {"SI", GroupBase, []string{"H", "L", "N"}},
	SA: {"SA", GroupBase, []string{"H", "L", "N"}},

	E: {"E", GroupThreat, []string{"X", "A", "P", "U"}},

	CR:  {"CR", GroupEnvironmental, []string{"X", "H", "M", "L"}},
	IR:  {"IR", GroupEnvironmental, []string{"X", "H", "M", "L"}},
	AR:  {"AR", GroupEnvironmental, []string{"X", "H", "M", "L"}},
	MAV: {"MAV", GroupEnvironmental, []string{"X", "N", "A", "L", "P"}},
	MAC: {"MAC", GroupEnvironmental, []string{"X", "L", "H"}},
	MAT: {"MAT", GroupEnvironmental, []string{"X", "N", "P"}},
	MPR: {"MPR", GroupEnvironmental, []string{"X", "N", "L", "H"}},
	MUI: {"MUI", GroupEnvironmental, []string{"X", "N", "P", "A"}},
	MVC: {"MVC", GroupEnvironmental, []string{"X", "H", "L", "N"}},
	MVI: {"MVI", GroupEnvironmental, []string{"X", "H", "L", "N"}},
	MVA: {"MVA", GroupEnvironmental, []string{"X", "H", "L", "N"}},
	MSC: {"MSC", GroupEnvironmental, []string{"X", "H", "L", "N"}},
	MSI: {"MSI", GroupEnvironmental, []string{"X", "S", "H", "L", "N"}},
	MSA: {"MSA", GroupEnvironmental, []string{"X", "S", "H", "L", "N"}},

	S:  {"S", GroupSupplemental, []string{"X", "N", "P"}},
	AU: {"AU", GroupSupplemental, []string{"X", "N", "Y"}},
	R:  {"R", GroupSupplemental, []string{"X", "A", "U", "I"}},
	V:  {"V", GroupSupplemental, []string{"X", "D", "C"}},
	RE: {"RE", GroupSupplemental, []string{"X", "L", "M", "H"}},
	U:  {"U", GroupSupplemental, []string{"X", "Clear", "Green", "Amber", "Red"}},
}

var metricsByName = func() map[string]Metric {
	m := make(map[string]Metric, numMetrics)
	for i := Metric(0); i < numMetrics; i++ {
		m[metricInfos[i].name] = i
	}
	return m
}()

// NotDefined is the value optional metrics take when left unspecified.
const NotDefined = "X"

// Metrics returns every known metric in canonical vector order.
func Metrics() []Metric {
	out := make([]Metric, 0, numMetrics)
	for i := Metric(0); i < numMetrics; i++ {
		out = append(out, i)
	}
	return out
}

// ParseMetric returns the metric with the given abbreviation.
func ParseMetric(name string) (Metric, bool) {
	m, ok := metricsByName[name]
	return m, ok
}

func (m Metric) valid() bool {
	return m >= 0 && m < numMetrics
}

func (m Metric) String() string {
	if !m.valid() {
		return "Metric(?)"
	}
	return metricInfos[m].name
}

// Group reports which metric group m belongs to.
func (m Metric) Group() Group {
	if !m.valid() {
		return ""
	}
	return metricInfos[m].group
}

// Values returns the ordered list of valid values for m.
func (m Metric) Values() []string {
	if !m.valid() {
		return nil
	}
	return append([]string(nil), metricInfos[m].values...)
}

// Accepts reports whether value is in the domain of m.
func (m Metric) Accepts(value string) bool {
	if !m.valid() {
		return false
	}
	for _, v := range metricInfos[m].values {
		if v == value {
			return true
		}
	}
	return false
}

// Modified returns the environmental M-prefixed counterpart of a base metric.
func (m Metric) Modified() (Metric, bool) {
	if m.Group() != GroupBase {
		return 0, false
	}
	return ParseMetric("M" + m.String())
}

// Base returns the base metric an M-prefixed metric overrides.
func (m Metric) Base() (Metric, bool) {
	name := m.String()
	if m.Group() != GroupEnvironmental || len(name) < 2 || name[0] != 'M' {
		return 0, false
	}
	return ParseMetric(name[1:])
}
