package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseVector = "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ee *exitErr
	require.True(t, errors.As(err, &ee), "want exitErr, got %v", err)
	return ee.code
}

func TestClean(t *testing.T) {
	out, err := run(t, "", "clean", baseVector+"/E:X/CR:H/MAV:X")
	require.NoError(t, err)
	assert.Equal(t, baseVector+"/CR:H\n", out)
}

func TestScoreText(t *testing.T) {
	out, err := run(t, "", "score", "--reference", baseVector)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "REFERENCE")
	assert.Equal(t, []string{"8.7", "9.3", "High", "CVSS-B", "000200", "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N"}, strings.Fields(lines[1]))
}

func TestScoreJSONFromStdin(t *testing.T) {
	stdin := "# vectors\n" + baseVector + "\n\n" + baseVector + "/E:U\n"
	out, err := run(t, stdin, "score", "--format", "json", "--file", "-")
	require.NoError(t, err)

	var items []struct {
		Input  string `json:"input"`
		Result struct {
			Score    float64 `json:"score"`
			Severity string  `json:"severity"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, 8.7, items[0].Result.Score)
	assert.Equal(t, 7.5, items[1].Result.Score)
	assert.Equal(t, "High", items[1].Result.Severity)
}

func TestScoreExitCodes(t *testing.T) {
	_, err := run(t, "", "score", "--fail-on", "high", baseVector)
	assert.Equal(t, 2, exitCode(t, err))

	_, err = run(t, "", "score", "--fail-on", "critical", baseVector)
	assert.NoError(t, err)

	_, err = run(t, "", "score", "--strict", "CVSS:4.0/AV:N")
	assert.Equal(t, 1, exitCode(t, err))

	_, err = run(t, "", "score", "--format", "xml", baseVector)
	assert.Equal(t, 3, exitCode(t, err))

	_, err = run(t, "", "score")
	assert.Equal(t, 3, exitCode(t, err))
}

func TestConfigErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -1\n"), 0o600))
	_, err := run(t, "", "--config", path, "score", baseVector)
	assert.Equal(t, 3, exitCode(t, err))

	_, err = run(t, "", "--log-level", "loud", "score", baseVector)
	assert.Equal(t, 3, exitCode(t, err))
}

func TestTailorNoPrompt(t *testing.T) {
	out, err := run(t, "", "tailor", "--vector", baseVector, "--no-prompt", "-e", "U")
	require.NoError(t, err)
	assert.Contains(t, out, "Base Score            : 8.7")
	assert.Contains(t, out, "Tailored Vector       : "+baseVector+"/E:U")
	assert.Contains(t, out, "Tailored Nomenclature : CVSS-BT")
	assert.Contains(t, out, "Tailored Score        : 7.5")
	assert.Contains(t, out, "Tailored Severity     : High")
}

func TestTailorQuestionnaire(t *testing.T) {
	// Fourteen empty answers keep the defaults, the last sets E.
	stdin := strings.Repeat("\n", 14) + "u\n"
	out, err := run(t, stdin, "tailor", "CVE-2024-0001", "--vector", baseVector)
	require.NoError(t, err)
	assert.Contains(t, out, "### Exploit Maturity (E) ###")
	assert.Contains(t, out, "CVE                   : CVE-2024-0001")
	assert.Contains(t, out, "Tailored Vector       : "+baseVector+"/E:U")
	assert.Contains(t, out, "Tailored Score        : 7.5")
}

func TestTailorConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics:\n  e: U\n  cr: L\n"), 0o600))
	out, err := run(t, "", "--config", path, "tailor", "--vector", baseVector, "--no-prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "Tailored Vector       : "+baseVector+"/E:U/CR:L")
	assert.Contains(t, out, "Tailored Score        : 7.1")
	assert.Contains(t, out, "Tailored Nomenclature : CVSS-BTE")
}

func TestTailorErrors(t *testing.T) {
	_, err := run(t, "not-a-cve\n", "tailor")
	assert.Equal(t, 3, exitCode(t, err))

	_, err = run(t, "", "tailor", "--vector", "CVSS:4.0/AV:N", "--no-prompt")
	assert.Equal(t, 3, exitCode(t, err))

	_, err = run(t, "", "tailor", "--vector", baseVector)
	assert.Equal(t, 1, exitCode(t, err), "questionnaire hits EOF")
}

func TestReport(t *testing.T) {
	input := `{"Results":[{"Target":"app","Vulnerabilities":[
		{"VulnerabilityID":"CVE-2024-0001","Severity":"CRITICAL","CVSS":{"ghsa":{"V40Vector":"` + baseVector + `"}}},
		{"VulnerabilityID":"CVE-2024-0002","Severity":"LOW"}
	]}]}`
	out, err := run(t, input, "report", "-e", "U", "--force-ctx-rating")
	require.NoError(t, err)

	var got struct {
		Results []struct {
			Vulnerabilities []struct {
				Custom struct {
					ContextualMetrics struct {
						Vector string
						Score  float64
						Rating string
					}
				}
			}
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	vulns := got.Results[0].Vulnerabilities
	require.Len(t, vulns, 2)
	assert.Equal(t, baseVector+"/E:U", vulns[0].Custom.ContextualMetrics.Vector)
	assert.Equal(t, 7.5, vulns[0].Custom.ContextualMetrics.Score)
	assert.Equal(t, "High", vulns[0].Custom.ContextualMetrics.Rating)
	assert.Equal(t, "LOW", vulns[1].Custom.ContextualMetrics.Rating)
}

func TestReportBadInput(t *testing.T) {
	_, err := run(t, "{", "report")
	assert.Equal(t, 3, exitCode(t, err))
}
