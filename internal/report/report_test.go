package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/resample/internal/report"
	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
	"github.com/Sumatoshi-tech/resample/pkg/hypothesis"
	"github.com/Sumatoshi-tech/resample/pkg/statistic"
)

func sampleBootstrap() report.Bootstrap {
	seed := uint64(42)

	summary := bootstrap.Summary{
		Statistic:  "mean",
		SampleSize: 5,
		Replicates: 2000,
		Seed:       &seed,
		Mean:       3.01,
		Variance:   0.4,
		StdErr:     0.632456,
		Interval:   bootstrap.Interval{Lower: 1.8, Upper: 4.2, Level: 0.95},
		Method:     bootstrap.QuantileEmpirical,
	}.WithObserved(3)

	return report.Bootstrap{Summary: summary}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := report.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, report.FormatText, f)

	f, err = report.ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, report.FormatYAML, f)

	_, err = report.ParseFormat("html")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestWriteBootstrap_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteBootstrap(&buf, report.FormatText, sampleBootstrap()))

	out := buf.String()
	assert.Contains(t, out, "Bootstrap estimate of mean")
	assert.Contains(t, out, "B = 2,000")
	assert.Contains(t, out, "seed 42")
	assert.Contains(t, out, "replicate mean")
	assert.Contains(t, out, "3.01")
	assert.Contains(t, out, "95% CI")
	assert.Contains(t, out, "[1.8, 4.2]")
	assert.Contains(t, out, "bias")
}

func TestWriteBootstrap_TextWithComparison(t *testing.T) {
	t.Parallel()

	b := sampleBootstrap()
	b.Parametric = &report.Comparison{
		Kind:     string(hypothesis.KindT),
		StdErr:   0.707107,
		Interval: bootstrap.Interval{Lower: 1.04, Upper: 4.96, Level: 0.95},
	}

	var buf bytes.Buffer

	require.NoError(t, report.WriteBootstrap(&buf, report.FormatText, b))

	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "clt (t)")
	assert.Contains(t, out, "0.707107")
	assert.Contains(t, out, "[1.04, 4.96]")
}

func TestWriteBootstrap_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteBootstrap(&buf, report.FormatJSON, sampleBootstrap()))

	var decoded struct {
		Bootstrap struct {
			Statistic  string  `json:"statistic"`
			Replicates int     `json:"replicates"`
			Seed       uint64  `json:"seed"`
			Bias       float64 `json:"bias"`
			Interval   struct {
				Lower float64 `json:"lower"`
				Upper float64 `json:"upper"`
			} `json:"interval"`
			Method string `json:"quantile_method"`
		} `json:"bootstrap"`
		Parametric *json.RawMessage `json:"parametric"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "mean", decoded.Bootstrap.Statistic)
	assert.Equal(t, 2000, decoded.Bootstrap.Replicates)
	assert.Equal(t, uint64(42), decoded.Bootstrap.Seed)
	assert.InDelta(t, 0.01, decoded.Bootstrap.Bias, 1e-9)
	assert.InDelta(t, 1.8, decoded.Bootstrap.Interval.Lower, 1e-12)
	assert.Equal(t, "empirical", decoded.Bootstrap.Method)
	assert.Nil(t, decoded.Parametric)
}

func TestWriteBootstrap_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteBootstrap(&buf, report.FormatYAML, sampleBootstrap()))

	var decoded map[string]map[string]any

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "mean", decoded["bootstrap"]["statistic"])
	assert.Equal(t, 5, decoded["bootstrap"]["sample_size"])
}

func TestWriteBootstrap_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := report.WriteBootstrap(&bytes.Buffer{}, "xml", sampleBootstrap())
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestWriteTest(t *testing.T) {
	t.Parallel()

	res, err := hypothesis.TTest([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 4)
	require.NoError(t, err)

	ci, err := hypothesis.MeanCI([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 0.9, hypothesis.KindT)
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, report.WriteTest(&buf, report.FormatText, report.Test{Result: res, Interval: ci}))

	out := buf.String()
	assert.Contains(t, out, "One-sample t-test of mean = 4")
	assert.Contains(t, out, "p-value")
	assert.Contains(t, out, "df")
	assert.Contains(t, out, "90% CI")

	buf.Reset()
	require.NoError(t, report.WriteTest(&buf, report.FormatJSON, report.Test{Result: res, Interval: ci}))
	assert.Contains(t, buf.String(), `"df": 7`)
}

func TestWriteStatistics(t *testing.T) {
	t.Parallel()

	all := statistic.DefaultRegistry().All()

	var buf bytes.Buffer

	require.NoError(t, report.WriteStatistics(&buf, report.FormatText, all))
	assert.Contains(t, buf.String(), "trimmed_mean")
	assert.Contains(t, buf.String(), "zero_reciprocal")

	buf.Reset()
	require.NoError(t, report.WriteStatistics(&buf, report.FormatJSON, all))

	var infos []report.StatisticInfo

	require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
	assert.Len(t, infos, len(all))
}

func TestNewComparison(t *testing.T) {
	t.Parallel()

	sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	cmp, err := report.NewComparison(sample, 0.95, hypothesis.KindNormal)
	require.NoError(t, err)

	assert.Equal(t, "normal", cmp.Kind)
	assert.InDelta(t, 0.755929, cmp.StdErr, 1e-6)
	assert.InDelta(t, 3.518406, cmp.Interval.Lower, 1e-6)
	assert.InDelta(t, 6.481594, cmp.Interval.Upper, 1e-6)

	_, err = report.NewComparison([]float64{1}, 0.95, hypothesis.KindT)
	require.ErrorIs(t, err, hypothesis.ErrInvalidArgument)
}

func TestWriteDistribution(t *testing.T) {
	t.Parallel()

	d := report.Distribution{Name: "normal", Op: "quantile", X: 0.975, Value: 1.959963984540054}

	var text bytes.Buffer
	require.NoError(t, report.WriteDistribution(&text, report.FormatText, d))
	assert.Equal(t, "1.959964\n", text.String())

	var js bytes.Buffer
	require.NoError(t, report.WriteDistribution(&js, report.FormatJSON, d))

	var decoded report.Distribution
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, d, decoded)
}

func TestWriteValues(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	require.NoError(t, report.WriteValues(&text, report.FormatText, []float64{1, 2.5, -3}))
	assert.Equal(t, "1\n2.5\n-3\n", text.String())

	var out bytes.Buffer
	require.NoError(t, report.WriteValues(&out, report.FormatYAML, []float64{1, 2.5}))

	var decoded []float64
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, []float64{1, 2.5}, decoded)
}
