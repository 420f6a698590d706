package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/resample/internal/analysis"
	"github.com/Sumatoshi-tech/resample/internal/config"
	"github.com/Sumatoshi-tech/resample/internal/report"
	"github.com/Sumatoshi-tech/resample/pkg/dist"
)

// Tool names.
const (
	ToolNameBootstrap    = "bootstrap"
	ToolNameMeanTest     = "mean_test"
	ToolNameDistribution = "distribution"
)

// Input limits. MaxDraws bounds sample size times replicates, the number of
// index draws one bootstrap call performs.
const (
	MaxSampleSize = 1 << 20
	MaxReplicates = 1_000_000
	MaxWorkers    = 64
	MaxDraws      = 1 << 30
)

const (
	bootstrapToolDescription = "Nonparametric bootstrap: resample the sample with replacement B times, " +
		"evaluate a named statistic on each resample and report the replicate mean, " +
		"standard error and percentile confidence interval."
	meanTestToolDescription = "Two-sided one-sample test of mean == mu0: a z-test when sigma is given, " +
		"otherwise Student's t-test, with the matching confidence interval."
	distributionToolDescription = "Evaluate pdf, cdf, quantile, mean or stddev of a normal, chisquared, " +
		"studentt or binomial distribution."
)

// Input validation errors.
var (
	ErrEmptySample       = errors.New("sample must not be empty")
	ErrSampleTooLarge    = errors.New("sample too large")
	ErrTooManyReplicates = errors.New("too many replicates")
	ErrTooManyWorkers    = errors.New("too many workers")
	ErrTooManyDraws      = errors.New("sample size times replicates too large")
	ErrNonFiniteInput    = errors.New("sample values must be finite")
	ErrNonFiniteResult   = dist.ErrNonFiniteResult
)

// BootstrapInput is the input schema for the bootstrap tool.
type BootstrapInput struct {
	Sample     []float64 `json:"sample"               jsonschema:"observed values"`
	Statistic  string    `json:"statistic,omitempty"  jsonschema:"statistic name (default: mean)"`
	Replicates int       `json:"replicates,omitempty" jsonschema:"number of bootstrap trials B (default: 1000)"`
	Seed       uint64    `json:"seed,omitempty"       jsonschema:"random seed; 0 draws a fresh one"`
	Confidence float64   `json:"confidence,omitempty" jsonschema:"confidence level in (0, 1) (default: 0.95)"`
	Quantile   string    `json:"quantile,omitempty"   jsonschema:"percentile method: empirical or linear"`
	Workers    int       `json:"workers,omitempty"    jsonschema:"parallel workers (default: 1)"`
	Compare    string    `json:"compare,omitempty"    jsonschema:"add a CLT interval for the mean: normal or t"`
}

// MeanTestInput is the input schema for the mean_test tool.
type MeanTestInput struct {
	Sample     []float64 `json:"sample"               jsonschema:"observed values"`
	Mu0        float64   `json:"mu0"                  jsonschema:"hypothesized mean"`
	Sigma      float64   `json:"sigma,omitempty"      jsonschema:"known population standard deviation; selects a z-test"`
	Confidence float64   `json:"confidence,omitempty" jsonschema:"confidence level in (0, 1) (default: 0.95)"`
}

// DistributionInput is the input schema for the distribution tool.
type DistributionInput struct {
	Name   string             `json:"name"             jsonschema:"normal, chisquared, studentt or binomial"`
	Op     string             `json:"op"               jsonschema:"pdf, cdf, quantile, mean or stddev"`
	X      float64            `json:"x,omitempty"      jsonschema:"point for pdf/cdf, probability for quantile"`
	Params map[string]float64 `json:"params,omitempty" jsonschema:"parameters: mu sigma | k | nu | n p"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleBootstrap(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input BootstrapInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateSample(input.Sample)
	if err != nil {
		return errorResult(err)
	}

	payload, err := s.runBootstrap(ctx, input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(payload)
}

func (s *Server) runBootstrap(ctx context.Context, input BootstrapInput) (report.Bootstrap, error) {
	if input.Replicates > MaxReplicates {
		return report.Bootstrap{}, fmt.Errorf("%w: %d (max %d)", ErrTooManyReplicates, input.Replicates, MaxReplicates)
	}

	if input.Workers > MaxWorkers {
		return report.Bootstrap{}, fmt.Errorf("%w: %d (max %d)", ErrTooManyWorkers, input.Workers, MaxWorkers)
	}

	replicates := input.Replicates
	if replicates <= 0 {
		replicates = s.defaultReplicates()
	}

	if draws := int64(len(input.Sample)) * int64(replicates); draws > MaxDraws {
		return report.Bootstrap{}, fmt.Errorf("%w: %d x %d (max %d)", ErrTooManyDraws, len(input.Sample), replicates, MaxDraws)
	}

	return s.runner.Bootstrap(ctx, analysis.BootstrapRequest{
		Sample:     input.Sample,
		Statistic:  input.Statistic,
		Replicates: input.Replicates,
		Seed:       input.Seed,
		Workers:    input.Workers,
		Confidence: input.Confidence,
		Quantile:   input.Quantile,
		Compare:    input.Compare,
	})
}

func (s *Server) defaultReplicates() int {
	if s.runner.Defaults != nil {
		return s.runner.Defaults.Bootstrap.Replicates
	}

	return config.DefaultReplicates
}

func (s *Server) handleMeanTest(
	_ context.Context, _ *mcpsdk.CallToolRequest, input MeanTestInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateSample(input.Sample)
	if err != nil {
		return errorResult(err)
	}

	payload, err := s.runner.MeanTest(analysis.MeanTestRequest{
		Sample:     input.Sample,
		Mu0:        input.Mu0,
		Sigma:      input.Sigma,
		Confidence: input.Confidence,
	})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(payload)
}

func (s *Server) handleDistribution(
	_ context.Context, _ *mcpsdk.CallToolRequest, input DistributionInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	d, err := dist.New(input.Name, input.Params)
	if err != nil {
		return errorResult(err)
	}

	value, err := dist.EvaluateFinite(d, input.Op, input.X)
	if err != nil {
		return errorResult(err)
	}

	s.logger.Debug("distribution evaluated", "name", input.Name, "op", input.Op, "x", input.X, "value", value)

	return jsonResult(report.Distribution{
		Name:   d.Name(),
		Op:     input.Op,
		X:      input.X,
		Params: input.Params,
		Value:  value,
	})
}

func validateSample(sample []float64) error {
	if len(sample) == 0 {
		return ErrEmptySample
	}

	if len(sample) > MaxSampleSize {
		return fmt.Errorf("%w: %d values (max %d)", ErrSampleTooLarge, len(sample), MaxSampleSize)
	}

	for i, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", ErrNonFiniteInput, i)
		}
	}

	return nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
