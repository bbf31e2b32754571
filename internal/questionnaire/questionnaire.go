// Package questionnaire walks a user through the Threat and Environmental
// metrics of a CVSS v4.0 vector.
package questionnaire

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"context-cvss4/cvss"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// Option is one selectable value of a question.
type Option struct {
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
}

// Question asks for the value of a single metric.
type Question struct {
	Metric   string   `yaml:"metric"`
	Title    string   `yaml:"title"`
	Question string   `yaml:"question"`
	Options  []Option `yaml:"options"`
}

// Catalog is the ordered list of questions asked.
type Catalog []Question

// LoadBuiltin returns the built-in question catalog.
func LoadBuiltin() (Catalog, error) {
	return Parse(builtinCatalog)
}

// Parse reads a YAML catalog and checks every option against the metric domains.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("questionnaire.Parse: %w", err)
	}
	for _, q := range c {
		m, ok := cvss.ParseMetric(q.Metric)
		if !ok {
			return nil, fmt.Errorf("questionnaire.Parse: unknown metric %q", q.Metric)
		}
		for _, o := range q.Options {
			if !m.Accepts(o.Value) {
				return nil, fmt.Errorf("questionnaire.Parse: %s: invalid option %q", q.Metric, o.Value)
			}
		}
	}
	return c, nil
}

func (q Question) option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Run asks every question of c on out, reading answers from in, and layers
// the answers on top of a copy of v. An empty answer keeps the value already
// in v, or X when v has none.
func Run(in io.Reader, out io.Writer, c Catalog, v *cvss.Vector) (*cvss.Vector, error) {
	tailored := v.Clone()
	scanner := bufio.NewScanner(in)
	for _, q := range c {
		m, _ := cvss.ParseMetric(q.Metric)
		current, ok := tailored.Get(m)
		if !ok {
			current = cvss.NotDefined
		}

		fmt.Fprintf(out, "\n\n### %s ###\n", q.Title)
		for _, o := range q.Options {
			fmt.Fprintf(out, "  - %s: %s\n", o.Value, o.Description)
		}

		for {
			fmt.Fprintf(out, "%s [%s]: ", q.Question, current)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, fmt.Errorf("read answer for %s: %w", q.Metric, err)
				}
				return nil, fmt.Errorf("read answer for %s: %w", q.Metric, io.ErrUnexpectedEOF)
			}
			answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if answer == "" {
				fmt.Fprintf(out, "Keeping default: %s\n", current)
				answer = current
			} else if o, ok := q.option(answer); ok {
				fmt.Fprintf(out, "Selected: %s\n", o.Description)
			} else {
				fmt.Fprintln(out, "Invalid input. Please select from the available options.")
				continue
			}
			if err := tailored.Set(m, answer); err != nil {
				return nil, err
			}
			break
		}
	}
	return tailored, nil
}
