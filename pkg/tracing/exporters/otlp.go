// Package exporters builds the span exporters the tracer provider can ship to.
package exporters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"

	defaultTimeout = 10 * time.Second
)

// OTLPConfig describes the collector spans are sent to
type OTLPConfig struct {
	// Endpoint is host:port, e.g. localhost:4317 for grpc or localhost:4318 for http
	Endpoint string
	Protocol string
	// Insecure sends spans without TLS
	Insecure bool
	// Headers are added to every export request, e.g. collector auth tokens
	Headers map[string]string
	Timeout time.Duration
}

// NewOTLPExporter creates an OTLP trace exporter for the configured protocol. The protocol
// name is case-insensitive.
func NewOTLPExporter(ctx context.Context, cfg OTLPConfig) (*otlptrace.Exporter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Protocol)) {
	case ProtocolGRPC:
		return otlptracegrpc.New(ctx, grpcOptions(cfg)...)
	case ProtocolHTTP:
		return otlptracehttp.New(ctx, httpOptions(cfg)...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol: %s (use '%s' or '%s')", cfg.Protocol, ProtocolGRPC, ProtocolHTTP)
	}
}

func grpcOptions(cfg OTLPConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTimeout(cfg.Timeout),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return opts
}

func httpOptions(cfg OTLPConfig) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithTimeout(cfg.Timeout),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return opts
}
