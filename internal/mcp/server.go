// Package mcp implements a Model Context Protocol server exposing bootstrap
// estimation, one-sample mean tests and distribution lookups as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/resample/internal/analysis"
	"github.com/Sumatoshi-tech/resample/internal/config"
	"github.com/Sumatoshi-tech/resample/internal/observability"
	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
	"github.com/Sumatoshi-tech/resample/pkg/statistic"
)

const serverName = "resample"

// ServerDeps holds injectable dependencies. Zero-value fields use defaults.
type ServerDeps struct {
	// Version is reported as the MCP implementation version.
	Version string

	Logger *slog.Logger

	// Metrics records per-tool RED metrics. Nil disables them.
	Metrics *observability.REDMetrics

	// Recorder receives bootstrap run metrics. Nil disables them.
	Recorder bootstrap.Recorder

	// Tracer creates a span per tool call. Nil disables tracing.
	Tracer trace.Tracer

	// Defaults supplies replicates, confidence, quantile and workers when a
	// call omits them. Nil uses config.Default().
	Defaults *config.Config

	// Statistics resolves statistic names. Nil uses the built-in registry.
	Statistics *statistic.Registry
}

// Server wraps the MCP SDK server with the resample tools.
type Server struct {
	inner   *mcpsdk.Server
	logger  *slog.Logger
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	runner  *analysis.Runner

	mu    sync.RWMutex
	tools []string
}

// NewServer creates a server with all tools registered.
func NewServer(deps ServerDeps) *Server {
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		inner:   mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version}, nil),
		logger:  logger,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		runner: &analysis.Runner{
			Defaults:   deps.Defaults,
			Statistics: deps.Statistics,
			Logger:     logger,
			Tracer:     deps.Tracer,
			Recorder:   deps.Recorder,
		},
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of the registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := slices.Clone(s.tools)
	slices.Sort(names)

	return names
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves over transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	addTool(s, &mcpsdk.Tool{Name: ToolNameBootstrap, Description: bootstrapToolDescription}, s.handleBootstrap)
	addTool(s, &mcpsdk.Tool{Name: ToolNameMeanTest, Description: meanTestToolDescription}, s.handleMeanTest)
	addTool(s, &mcpsdk.Tool{Name: ToolNameDistribution, Description: distributionToolDescription}, s.handleDistribution)
}

func addTool[Input any](
	s *Server,
	tool *mcpsdk.Tool,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) {
	mcpsdk.AddTool(s.inner, tool, withMetrics(s.metrics, tool.Name, withTracing(s.tracer, tool.Name, handler)))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool.Name)
}

const (
	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// withTracing opens a span per call and appends trace_id to sampled results.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if result != nil && result.IsError {
			span.SetStatus(codes.Error, "tool returned an error result")
		}

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{
				Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String()),
			})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per call.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	op := mcpSpanPrefix + toolName

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		done := metrics.TrackInflight(ctx, op)
		defer done()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, op, status, time.Since(start))

		return result, output, err
	}
}
