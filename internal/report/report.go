package report

import (
	"encoding/json"
	"slices"

	dbTypes "github.com/aquasecurity/trivy-db/pkg/types"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"context-cvss4/cvss"
	"context-cvss4/internal/epss"
	"context-cvss4/internal/flags"
)

// contextualMetrics holds the tailored CVSS v4.0 score and EPSS data, stored under Custom.ContextualMetrics.
type contextualMetrics struct {
	Vector         string   `json:"Vector,omitempty"`
	MacroVector    string   `json:"MacroVector,omitempty"`
	Nomenclature   string   `json:"Nomenclature,omitempty"`
	Score          float64  `json:"Score"`
	Rating         string   `json:"Rating,omitempty"`
	ReferenceScore *float64 `json:"ReferenceScore,omitempty"`
	EpssScore      *float64 `json:"EpssScore,omitempty"`
	EpssPercentile *float64 `json:"EpssPercentile,omitempty"`
	EpssDate       *string  `json:"EpssDate,omitempty"`
}

var defaultCVSSSources = []dbTypes.SourceID{
	"redhat", "ghsa", "bitnami", "ubuntu", "alpine", "amazon", "oracle", "nvd",
}

// vendorCVSS decodes the CVSS section of a vulnerability.
func vendorCVSS(vuln map[string]any) dbTypes.VendorCVSS {
	raw, ok := vuln["CVSS"]
	if !ok {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var out dbTypes.VendorCVSS
	if err := json.Unmarshal(b, &out); err != nil {
		logrus.Debugf("Ignoring malformed CVSS section: %v", err)
		return nil
	}
	return out
}

func chooseCVSSSource(vuln map[string]any) dbTypes.SourceID {
	vendors := vendorCVSS(vuln)
	if len(vendors) == 0 {
		return ""
	}
	severitySource, _ := vuln["SeveritySource"].(string)
	if severitySource != "" {
		if data, ok := vendors[dbTypes.SourceID(severitySource)]; ok && data.V40Vector != "" {
			return dbTypes.SourceID(severitySource)
		}
	}
	for _, source := range defaultCVSSSources {
		if data, ok := vendors[source]; ok && data.V40Vector != "" {
			return source
		}
	}
	// Remaining sources are tried in a stable order.
	sources := lo.Keys(vendors)
	slices.Sort(sources)
	for _, source := range sources {
		if vendors[source].V40Vector != "" {
			return source
		}
	}
	return ""
}

func getCVSSVectorFromVuln(vuln map[string]any) string {
	source := chooseCVSSSource(vuln)
	if source == "" {
		return ""
	}
	return vendorCVSS(vuln)[source].V40Vector
}

func setContextualMetrics(vuln map[string]any, metrics contextualMetrics) {
	if vuln["Custom"] == nil {
		vuln["Custom"] = make(map[string]any)
	}
	if custom, ok := vuln["Custom"].(map[string]any); ok {
		custom["ContextualMetrics"] = metrics
	}
}

func eachVuln(results []any, fn func(vuln map[string]any)) {
	for _, r := range results {
		resa, _ := r.(map[string]any)
		if resa == nil {
			continue
		}
		vulns, _ := resa["Vulnerabilities"].([]any)
		for _, v := range vulns {
			if vuln, _ := v.(map[string]any); vuln != nil {
				fn(vuln)
			}
		}
	}
}

// CollectCVEsWithoutCVSS returns CVE IDs that have no CVSS v4.0 source in the report.
func CollectCVEsWithoutCVSS(results []any) []string {
	var out []string
	eachVuln(results, func(vuln map[string]any) {
		if chooseCVSSSource(vuln) != "" {
			return
		}
		if id, _ := vuln["VulnerabilityID"].(string); id != "" {
			out = append(out, id)
		}
	})
	return lo.Uniq(out)
}

// CollectAllCVEIDs returns deduplicated CVE IDs from all vulnerabilities in results.
func CollectAllCVEIDs(results []any) []string {
	var out []string
	eachVuln(results, func(vuln map[string]any) {
		if id, _ := vuln["VulnerabilityID"].(string); id != "" {
			out = append(out, id)
		}
	})
	return lo.Uniq(out)
}

// Process tailors every vulnerability of a decoded Trivy report.
func Process(reportData map[string]any, nvdVectors map[string]string, epssData map[string]epss.Data, ro flags.RunOptions) {
	results, _ := reportData["Results"].([]any)
	eachVuln(results, func(vuln map[string]any) {
		ProcessVuln(vuln, nvdVectors, epssData, ro)
	})
}

// ProcessVuln resolves the CVSS v4.0 vector, applies contextual metrics, and writes result to vuln.Custom.ContextualMetrics.
func ProcessVuln(vuln map[string]any, nvdVectors map[string]string, epssData map[string]epss.Data, ro flags.RunOptions) {
	vulnID, _ := vuln["VulnerabilityID"].(string)
	severity, _ := vuln["Severity"].(string)
	vectorStr := getCVSSVectorFromVuln(vuln)
	if vectorStr == "" && ro.FetchCVSS {
		vectorStr = nvdVectors[vulnID]
	}
	if vectorStr == "" {
		if ro.ForceCtxRating {
			setContextualMetrics(vuln, contextualMetrics{Rating: severity})
		}
		return
	}
	opts := ro.Opts
	if ro.UseEPSS {
		if data, ok := epssData[vulnID]; ok {
			opts.E = epss.EPSSToExploitMaturity(data.Score)
		}
	}
	newVectorStr, err := cvss.ApplyMetrics(vectorStr, opts)
	if err != nil {
		logrus.Warnf("Error applying environmental metrics for %s: %v", vulnID, err)
		return
	}
	res, err := cvss.Score(newVectorStr)
	if err != nil {
		logrus.Errorf("Error calculating score for %s: %v", vulnID, err)
		return
	}
	metrics := contextualMetrics{
		Vector:       res.Vector,
		MacroVector:  res.MacroVector,
		Nomenclature: string(res.Nomenclature),
		Score:        res.Score,
		Rating:       string(res.Severity),
	}
	if ref, err := cvss.ReferenceScore(newVectorStr); err == nil {
		metrics.ReferenceScore = &ref
	} else {
		logrus.Debugf("No reference score for %s: %v", vulnID, err)
	}
	if ro.UseEPSS {
		if data, ok := epssData[vulnID]; ok {
			metrics.EpssScore = &data.Score
			metrics.EpssPercentile = &data.Percentile
			if data.Date != "" {
				metrics.EpssDate = &data.Date
			}
		}
	}
	setContextualMetrics(vuln, metrics)
}
