package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context-cvss4/cvss"
	"context-cvss4/internal/epss"
	"context-cvss4/internal/flags"
)

const v4Vector = "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N"

const trivyReport = `{
  "SchemaVersion": 2,
  "Results": [
    {
      "Target": "alpine:3.20",
      "Vulnerabilities": [
        {
          "VulnerabilityID": "CVE-2024-0001",
          "Severity": "CRITICAL",
          "SeveritySource": "ghsa",
          "CVSS": {
            "nvd": {"V3Vector": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "V3Score": 9.8},
            "ghsa": {"V40Vector": "` + v4Vector + `", "V40Score": 9.3}
          }
        },
        {
          "VulnerabilityID": "CVE-2024-0002",
          "Severity": "HIGH",
          "CVSS": {
            "nvd": {"V3Vector": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}
          }
        },
        {
          "VulnerabilityID": "CVE-2024-0001",
          "Severity": "CRITICAL",
          "CVSS": {
            "zz-vendor": {"V40Vector": "` + v4Vector + `"}
          }
        }
      ]
    },
    {"Target": "empty"}
  ]
}`

func decode(t *testing.T) map[string]any {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(trivyReport), &data))
	return data
}

func vulns(data map[string]any) []map[string]any {
	var out []map[string]any
	results, _ := data["Results"].([]any)
	eachVuln(results, func(v map[string]any) { out = append(out, v) })
	return out
}

func ctxMetrics(t *testing.T, vuln map[string]any) contextualMetrics {
	t.Helper()
	custom, ok := vuln["Custom"].(map[string]any)
	require.True(t, ok, "Custom not set")
	m, ok := custom["ContextualMetrics"].(contextualMetrics)
	require.True(t, ok)
	return m
}

func TestChooseCVSSSource(t *testing.T) {
	vs := vulns(decode(t))
	assert.EqualValues(t, "ghsa", chooseCVSSSource(vs[0]))
	assert.EqualValues(t, "", chooseCVSSSource(vs[1]))
	assert.EqualValues(t, "zz-vendor", chooseCVSSSource(vs[2]))
	assert.EqualValues(t, "", chooseCVSSSource(map[string]any{"CVSS": "broken"}))
}

func TestCollectCVEs(t *testing.T) {
	results, _ := decode(t)["Results"].([]any)
	assert.Equal(t, []string{"CVE-2024-0002"}, CollectCVEsWithoutCVSS(results))
	assert.Equal(t, []string{"CVE-2024-0001", "CVE-2024-0002"}, CollectAllCVEIDs(results))
}

func TestProcess(t *testing.T) {
	data := decode(t)
	ro := flags.RunOptions{Opts: cvss.MetricsOptions{E: "U"}}
	Process(data, nil, nil, ro)

	vs := vulns(data)
	m := ctxMetrics(t, vs[0])
	assert.Equal(t, v4Vector+"/E:U", m.Vector)
	assert.Equal(t, "000220", m.MacroVector)
	assert.Equal(t, 7.5, m.Score)
	assert.Equal(t, "High", m.Rating)
	assert.Equal(t, "CVSS-BT", m.Nomenclature)
	require.NotNil(t, m.ReferenceScore)
	assert.Nil(t, m.EpssScore)

	assert.Nil(t, vs[1]["Custom"], "no v4 vector and no fallback")
}

func TestProcessVulnNVDFallbackAndEPSS(t *testing.T) {
	vs := vulns(decode(t))
	ro := flags.RunOptions{
		Opts:      cvss.MetricsOptions{E: "U", CR: "L"},
		UseEPSS:   true,
		FetchCVSS: true,
	}
	nvd := map[string]string{"CVE-2024-0002": v4Vector}
	scores := map[string]epss.Data{"CVE-2024-0002": {Score: 0.3, Percentile: 0.8, Date: "2026-10-01"}}

	ProcessVuln(vs[1], nvd, scores, ro)
	m := ctxMetrics(t, vs[1])
	assert.Equal(t, v4Vector+"/E:P/CR:L", m.Vector)
	assert.Equal(t, 7.9, m.Score)
	assert.Equal(t, "CVSS-BTE", m.Nomenclature)
	require.NotNil(t, m.EpssScore)
	assert.Equal(t, 0.3, *m.EpssScore)
	require.NotNil(t, m.EpssDate)
	assert.Equal(t, "2026-10-01", *m.EpssDate)
}

func TestProcessVulnForceRating(t *testing.T) {
	vs := vulns(decode(t))
	ProcessVuln(vs[1], nil, nil, flags.RunOptions{ForceCtxRating: true})
	m := ctxMetrics(t, vs[1])
	assert.Equal(t, "HIGH", m.Rating)
	assert.Empty(t, m.Vector)
}

func TestProcessVulnBadOption(t *testing.T) {
	vs := vulns(decode(t))
	ProcessVuln(vs[0], nil, nil, flags.RunOptions{Opts: cvss.MetricsOptions{MSC: "S"}})
	assert.Nil(t, vs[0]["Custom"])
}
