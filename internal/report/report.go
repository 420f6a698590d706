// Package report formats bootstrap and hypothesis-test results as text
// tables, JSON or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
	"github.com/Sumatoshi-tech/resample/pkg/hypothesis"
	"github.com/Sumatoshi-tech/resample/pkg/statistic"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output encoding.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	decimalPlaces = 6
	percentScale  = 100
	yamlIndent    = 2
)

// Formats returns the supported output format names.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatText), string(FormatYAML)}
}

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}

	f := Format(strings.ToLower(name))
	if !slices.Contains(Formats(), string(f)) {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}

	return f, nil
}

// Comparison is a parametric estimate shown next to the bootstrap one.
type Comparison struct {
	Kind     string             `json:"kind"     yaml:"kind"`
	StdErr   float64            `json:"std_err"  yaml:"std_err"`
	Interval bootstrap.Interval `json:"interval" yaml:"interval"`
}

// NewComparison computes the CLT standard error and mean interval of sample
// for display beside a bootstrap estimate.
func NewComparison(sample []float64, level float64, kind hypothesis.IntervalKind) (*Comparison, error) {
	se, err := hypothesis.StandardError(sample)
	if err != nil {
		return nil, err
	}

	iv, err := hypothesis.MeanCI(sample, level, kind)
	if err != nil {
		return nil, err
	}

	return &Comparison{Kind: string(kind), StdErr: se, Interval: iv}, nil
}

// Bootstrap is the payload of a bootstrap run.
type Bootstrap struct {
	Summary    bootstrap.Summary `json:"bootstrap"            yaml:"bootstrap"`
	Parametric *Comparison       `json:"parametric,omitempty" yaml:"parametric,omitempty"`
}

// Test is the payload of a one-sample location test.
type Test struct {
	Result   hypothesis.Result  `json:"result"   yaml:"result"`
	Interval bootstrap.Interval `json:"interval" yaml:"interval"`
}

// Distribution is the payload of a distribution evaluation.
type Distribution struct {
	Name   string             `json:"name"             yaml:"name"`
	Op     string             `json:"op"               yaml:"op"`
	X      float64            `json:"x"                yaml:"x"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
	Value  float64            `json:"value"            yaml:"value"`
}

// StatisticInfo describes a registered statistic.
type StatisticInfo struct {
	Name        string `json:"name"         yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Type        string `json:"type"         yaml:"type"`
	Description string `json:"description"  yaml:"description"`
}

// WriteBootstrap writes a bootstrap result in the given format.
func WriteBootstrap(w io.Writer, format Format, b Bootstrap) error {
	return write(w, format, b, func() string { return bootstrapText(b) })
}

// WriteTest writes a hypothesis-test result in the given format.
func WriteTest(w io.Writer, format Format, t Test) error {
	return write(w, format, t, func() string { return testText(t) })
}

// WriteDistribution writes a distribution evaluation in the given format.
func WriteDistribution(w io.Writer, format Format, d Distribution) error {
	return write(w, format, d, func() string { return num(d.Value) })
}

// WriteValues writes values one per line as text, or as a list in JSON and YAML.
func WriteValues(w io.Writer, format Format, values []float64) error {
	return write(w, format, values, func() string {
		lines := make([]string, len(values))
		for i, v := range values {
			lines[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}

		return strings.Join(lines, "\n")
	})
}

// WriteStatistics lists statistics in the given format.
func WriteStatistics(w io.Writer, format Format, stats []statistic.Statistic) error {
	infos := make([]StatisticInfo, 0, len(stats))
	for _, s := range stats {
		infos = append(infos, StatisticInfo{
			Name:        s.Name(),
			DisplayName: s.DisplayName(),
			Type:        s.Type(),
			Description: s.Description(),
		})
	}

	return write(w, format, infos, func() string { return statisticsText(infos) })
}

func write(w io.Writer, format Format, payload any, text func() string) error {
	switch format {
	case FormatText, "":
		_, err := fmt.Fprintln(w, text())
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(payload)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(payload)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func bootstrapText(b Bootstrap) string {
	s := b.Summary

	name := s.Statistic
	if name == "" {
		name = "statistic"
	}

	title := fmt.Sprintf("Bootstrap estimate of %s (n = %s, B = %s", name,
		humanize.Comma(int64(s.SampleSize)), humanize.Comma(int64(s.Replicates)))
	if s.Seed != nil {
		title += fmt.Sprintf(", seed %d", *s.Seed)
	}

	title += ")"

	tbl := newTable()

	header := table.Row{"", "bootstrap"}
	if b.Parametric != nil {
		header = append(header, "CLT ("+b.Parametric.Kind+")")
	}

	tbl.AppendHeader(header)

	if s.Observed != nil {
		tbl.AppendRow(table.Row{"observed", num(*s.Observed)})
	}

	tbl.AppendRow(table.Row{"replicate mean", num(s.Mean)})

	if s.Bias != nil {
		tbl.AppendRow(table.Row{"bias", num(*s.Bias)})
	}

	tbl.AppendRow(table.Row{"variance", num(s.Variance)})

	stdErrRow := table.Row{"std. error", num(s.StdErr)}
	intervalRow := table.Row{levelLabel(s.Interval.Level), interval(s.Interval)}

	if b.Parametric != nil {
		stdErrRow = append(stdErrRow, num(b.Parametric.StdErr))
		intervalRow = append(intervalRow, interval(b.Parametric.Interval))
	}

	tbl.AppendRow(stdErrRow)
	tbl.AppendRow(intervalRow)
	tbl.AppendFooter(table.Row{"quantile", string(s.Method)})

	return heading(title) + "\n" + tbl.Render()
}

func testText(t Test) string {
	r := t.Result

	title := fmt.Sprintf("One-sample %s-test of mean = %s", r.Test, num(r.Mu0))

	tbl := newTable()
	tbl.AppendRow(table.Row{"n", humanize.Comma(int64(r.SampleSize))})
	tbl.AppendRow(table.Row{"mean", num(r.Mean)})
	tbl.AppendRow(table.Row{"std. error", num(r.StdErr)})
	tbl.AppendRow(table.Row{r.Test, num(r.Statistic)})

	if r.DF > 0 {
		tbl.AppendRow(table.Row{"df", r.DF})
	}

	tbl.AppendRow(table.Row{"p-value", num(r.PValue)})
	tbl.AppendRow(table.Row{levelLabel(t.Interval.Level), interval(t.Interval)})

	return heading(title) + "\n" + tbl.Render()
}

func statisticsText(infos []StatisticInfo) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"name", "type", "description"})

	for _, info := range infos {
		tbl.AppendRow(table.Row{info.Name, info.Type, info.Description})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d statistics", len(infos))})

	return tbl.Render()
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func heading(text string) string {
	return color.New(color.Bold, color.FgCyan).Sprint(text)
}

func num(v float64) string {
	return humanize.FtoaWithDigits(v, decimalPlaces)
}

func interval(iv bootstrap.Interval) string {
	return fmt.Sprintf("[%s, %s]", num(iv.Lower), num(iv.Upper))
}

func levelLabel(level float64) string {
	return humanize.FtoaWithDigits(level*percentScale, 2) + "% CI"
}
