package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"context-cvss4/cvss"
	"context-cvss4/internal/epss"
	"context-cvss4/internal/flags"
	"context-cvss4/internal/nvd"
	"context-cvss4/internal/questionnaire"
)

type tailorFlags struct {
	opts      cvss.MetricsOptions
	vector    string
	catalog   string
	nvdAPIKey string
	useEPSS   bool
	noPrompt  bool
}

func newTailorCmd(a *app) *cobra.Command {
	f := &tailorFlags{}
	cmd := &cobra.Command{
		Use:   "tailor [CVE-ID]",
		Short: "Tailor the CVSS v4.0 score of a CVE to your environment",
		Long: "Fetch the CVSS v4.0 base vector of a CVE from NVD, or take it from --vector,\n" +
			"then answer questions about exploitation and your environment to compute\n" +
			"a tailored score. Metric flags and config defaults prefill the answers.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTailor(cmd, a, f, args)
		},
	}
	fs := cmd.Flags()
	flags.BindMetrics(fs, &f.opts)
	fs.StringVar(&f.vector, "vector", "", "Base vector to tailor instead of fetching it from NVD")
	fs.StringVar(&f.catalog, "catalog", "", "YAML question catalog replacing the built-in one")
	fs.StringVar(&f.nvdAPIKey, "nvd-api-key", "", "NVD API key; or set NVD_API_KEY env")
	fs.BoolVar(&f.useEPSS, "epss", false, "Prefill Exploit Maturity (E) from the CVE's EPSS score")
	fs.BoolVar(&f.noPrompt, "no-prompt", false, "Apply flags and defaults only, without asking questions")
	return cmd
}

// baseRecord is the vector being tailored and where it came from.
type baseRecord struct {
	cveID   string
	vector  string
	score   float64
	version string
}

func runTailor(cmd *cobra.Command, a *app, f *tailorFlags, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "### CVSS 4.0 Tailoring Tool ###")

	catalog, err := loadCatalog(f.catalog)
	if err != nil {
		return exitError(3, "%v", err)
	}

	var cveID string
	if len(args) == 1 {
		cveID = strings.TrimSpace(args[0])
	}
	if cveID == "" && f.vector == "" {
		fmt.Fprint(out, "Enter the CVE ID (e.g., CVE-2024-1234): ")
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		cveID = strings.TrimSpace(line)
	}

	base, err := resolveBase(cmd, f, cveID)
	if err != nil {
		return err
	}

	opts := flags.Merge(a.cfg.Metrics, f.opts)
	if f.useEPSS && base.cveID != "" {
		scores, err := epss.NewClient().FetchScores(cmd.Context(), []string{base.cveID})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "EPSS fetch: %v (keeping E from flags)\n", err)
		} else if data, ok := scores[base.cveID]; ok {
			opts.E = epss.EPSSToExploitMaturity(data.Score)
			fmt.Fprintf(out, "EPSS score %.5f (percentile %.5f) suggests E:%s\n", data.Score, data.Percentile, opts.E)
		}
	}
	prefilled, err := cvss.ApplyMetrics(base.vector, opts)
	if err != nil {
		return exitError(3, "apply metrics: %v", err)
	}

	tailored := cvss.ParseVector(prefilled)
	if !f.noPrompt {
		tailored, err = questionnaire.Run(in, out, catalog, tailored)
		if err != nil {
			return exitError(1, "questionnaire: %v", err)
		}
	}
	res, err := tailored.Score()
	if err != nil {
		return err
	}
	printFinalReport(out, base, res)
	return nil
}

func loadCatalog(path string) (questionnaire.Catalog, error) {
	if path == "" {
		return questionnaire.LoadBuiltin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return questionnaire.Parse(data)
}

func resolveBase(cmd *cobra.Command, f *tailorFlags, cveID string) (baseRecord, error) {
	if f.vector != "" {
		if err := cvss.Validate(f.vector); err != nil {
			return baseRecord{}, exitError(3, "invalid --vector: %v", err)
		}
		res, err := cvss.Score(f.vector)
		if err != nil {
			return baseRecord{}, err
		}
		return baseRecord{cveID: cveID, vector: f.vector, score: res.Score, version: "4.0"}, nil
	}

	if err := nvd.ValidateCVEID(cveID); err != nil {
		return baseRecord{}, exitError(3, "Invalid CVE ID format. Please enter a valid CVE ID (e.g., CVE-2024-1234).")
	}
	apiKey := f.nvdAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("NVD_API_KEY")
	}
	rec, err := nvd.NewClient(apiKey).FetchCVSSV4(cmd.Context(), cveID)
	if err != nil {
		return baseRecord{}, exitError(4, "Failed to fetch CVE data for %s: %v", cveID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "CVSS 4.0 Base Vector: %s | Base Score: %.1f\n", rec.Vector, rec.BaseScore)
	return baseRecord{cveID: cveID, vector: rec.Vector, score: rec.BaseScore, version: rec.Version}, nil
}

func printFinalReport(out io.Writer, base baseRecord, res cvss.Result) {
	cve := base.cveID
	if cve == "" {
		cve = "-"
	}
	fmt.Fprintln(out, "\n### Final Report ###")
	fmt.Fprintf(out, "CVE                   : %s\n", cve)
	fmt.Fprintf(out, "CVSS Version          : %s\n", base.version)
	fmt.Fprintf(out, "Base Vector           : %s\n", cvss.TrimVector(base.vector))
	fmt.Fprintf(out, "Base Score            : %.1f\n", base.score)
	fmt.Fprintf(out, "Tailored Vector       : %s\n", cvss.TrimVector(res.Vector))
	fmt.Fprintf(out, "Tailored Nomenclature : %s\n", res.Nomenclature)
	fmt.Fprintf(out, "Tailored Score        : %.1f\n", res.Score)
	fmt.Fprintf(out, "Tailored Severity     : %s\n", res.Severity)
}
