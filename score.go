package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"context-cvss4/cvss"
	"context-cvss4/internal/batch"
)

type scoreFlags struct {
	file      string
	format    string
	strict    bool
	reference bool
	failOn    string
}

func newScoreCmd(a *app) *cobra.Command {
	f := &scoreFlags{}
	cmd := &cobra.Command{
		Use:   "score [vector]...",
		Short: "Compute CVSS v4.0 scores",
		Long: "Compute the CVSS v4.0 score, severity and nomenclature of each vector.\n" +
			"Vectors come from the arguments or, with --file, one per line (- for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, a, f, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Read vectors from file, one per line (- for stdin)")
	flags.StringVar(&f.format, "format", "text", "Output format: text or json")
	flags.BoolVar(&f.strict, "strict", false, "Reject vectors missing base metrics or with unknown fragments")
	flags.BoolVar(&f.reference, "reference", false, "Also print the go-cvss reference score")
	flags.StringVar(&f.failOn, "fail-on", "", "Exit 2 if any score reaches this severity (low, medium, high, critical)")
	return cmd
}

func runScore(cmd *cobra.Command, a *app, f *scoreFlags, args []string) error {
	var threshold cvss.Severity
	if f.failOn != "" {
		s, ok := cvss.ParseSeverity(f.failOn)
		if !ok {
			return exitError(3, "invalid --fail-on %q", f.failOn)
		}
		threshold = s
	}
	if f.format != "text" && f.format != "json" {
		return exitError(3, "invalid --format %q: want text or json", f.format)
	}

	vectors := args
	if f.file != "" {
		read, err := readVectors(cmd.InOrStdin(), f.file)
		if err != nil {
			return exitError(3, "read vectors: %v", err)
		}
		vectors = append(vectors, read...)
	}
	if len(vectors) == 0 {
		return exitError(3, "no vectors given")
	}

	items, err := batch.ScoreAll(cmd.Context(), vectors, batch.Options{Workers: a.cfg.Workers, Strict: f.strict})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return err
		}
	} else {
		writeScoreTable(out, items, f.reference)
	}

	failed := 0
	reached := false
	for _, item := range items {
		if item.Result == nil {
			failed++
			continue
		}
		if threshold != "" && item.Result.Severity.Rank() >= threshold.Rank() {
			reached = true
		}
	}
	switch {
	case failed > 0:
		return exitError(1, "%d of %d vectors could not be scored", failed, len(items))
	case reached:
		return exitError(2, "score at or above %s", threshold)
	}
	return nil
}

func writeScoreTable(out io.Writer, items []batch.Item, reference bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "SCORE\tSEVERITY\tNOMENCLATURE\tMACRO\tVECTOR"
	if reference {
		header = "SCORE\tREFERENCE\tSEVERITY\tNOMENCLATURE\tMACRO\tVECTOR"
	}
	fmt.Fprintln(w, header)
	for _, item := range items {
		if item.Result == nil {
			fmt.Fprintf(w, "error\t%s\t%s\n", item.Error, item.Input)
			continue
		}
		r := item.Result
		if reference {
			ref := "-"
			if s, err := cvss.ReferenceScore(item.Input); err == nil {
				ref = fmt.Sprintf("%.1f", s)
			}
			fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\t%s\t%s\n", r.Score, ref, r.Severity, r.Nomenclature, r.MacroVector, r.Vector)
			continue
		}
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\t%s\n", r.Score, r.Severity, r.Nomenclature, r.MacroVector, r.Vector)
	}
	w.Flush()
}

func readVectors(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}
