package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"context-cvss4/internal/epss"
	"context-cvss4/internal/flags"
	"context-cvss4/internal/nvd"
	"context-cvss4/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	var ro *flags.RunOptions
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Add tailored CVSS v4.0 scores to a Trivy JSON report",
		Long: "Read a Trivy JSON report on stdin and write it to stdout with a\n" +
			"Custom.ContextualMetrics entry on every vulnerability that has, or can\n" +
			"fetch, a CVSS v4.0 vector.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ro.Finalize(a.cfg.Metrics)
			if ro.NvdAPIKey == "" {
				ro.NvdAPIKey = a.cfg.NVD.APIKey
			}
			return runReport(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), *ro)
		},
	}
	ro = flags.Bind(cmd.Flags())
	return cmd
}

func runReport(ctx context.Context, in io.Reader, out io.Writer, ro flags.RunOptions) error {
	inputData, err := io.ReadAll(in)
	if err != nil {
		return exitError(3, "failed to read from stdin: %v", err)
	}
	var reportData map[string]any
	if err := json.Unmarshal(inputData, &reportData); err != nil {
		return exitError(3, "failed to parse JSON: %v", err)
	}
	processReport(ctx, reportData, ro)
	output, err := json.MarshalIndent(reportData, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(output))
	return err
}

func processReport(ctx context.Context, reportData map[string]any, ro flags.RunOptions) {
	results, _ := reportData["Results"].([]any)
	if results == nil {
		return
	}
	nvdVectors := map[string]string{}
	if ro.FetchCVSS {
		nvdVectors = fetchNVDVectors(ctx, report.CollectCVEsWithoutCVSS(results), ro.NvdAPIKey)
	}
	epssData := map[string]epss.Data{}
	if ro.UseEPSS {
		epssData = fetchEPSSData(ctx, report.CollectAllCVEIDs(results))
	}
	report.Process(reportData, nvdVectors, epssData, ro)
}

func fetchNVDVectors(ctx context.Context, cveIDs []string, apiKey string) map[string]string {
	out := make(map[string]string)
	client := nvd.NewClient(apiKey)
	for i, cveID := range cveIDs {
		if i > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(client.Throttle()):
			}
		}
		rec, err := client.FetchCVSSV4(ctx, cveID)
		if err != nil {
			logrus.Warnf("NVD fetch %s: %v", cveID, err)
			continue
		}
		out[cveID] = rec.Vector
	}
	return out
}

func fetchEPSSData(ctx context.Context, cveIDs []string) map[string]epss.Data {
	data, err := epss.NewClient().FetchScores(ctx, cveIDs)
	if err != nil {
		logrus.Warnf("EPSS fetch: %v (using -e or X for E)", err)
	}
	if data == nil {
		return map[string]epss.Data{}
	}
	return data
}
