package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"context-cvss4/internal/config"
)

var version = "0.1.0"

// app carries state shared by the subcommands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "context-cvss4",
		Short:         "Score and tailor CVSS v4.0 vectors to your environment",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file with default metrics and settings")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newScoreCmd(a),
		newCleanCmd(),
		newTailorCmd(a),
		newReportCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return exitError(3, "%v", err)
	}
	a.cfg = cfg
	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return exitError(3, "invalid log level %q: %v", level, err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lvl)
	return nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
