package cmd

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/ordinoproj/ordino/pkg/otelhelper"
)

// NewTracer builds an OTLP tracer when the standard OTEL endpoint
// variable is set. Without it runs stay untraced; a broken exporter is
// logged, never a reason to refuse to start.
func NewTracer(ctx context.Context, serviceName string, logger *slog.Logger) trace.Tracer {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return nil
	}

	tracer, err := otelhelper.NewTracer(ctx, serviceName)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize tracing", "error", err)

		return nil
	}

	return tracer
}
