package cmd

import (
	"context"
	"fmt"
	"sort"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/version"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

const serviceName = "javasegment"

// telemetry owns the process meter provider. Metrics are pulled through a manual
// reader and summarized in the log when a command finishes.
type telemetry struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

// setupTelemetry installs an SDK meter provider as the global provider.
func setupTelemetry(ctx context.Context) (*telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version.GetVersion().Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry resource: %w", err)
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(provider)

	return &telemetry{provider: provider, reader: reader}, nil
}

// Summary collects every counter and returns its total per metric name.
func (t *telemetry) Summary(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals, nil
}

// Shutdown logs the metric summary and stops the provider.
func (t *telemetry) Shutdown(ctx context.Context) {
	if totals, err := t.Summary(ctx); err == nil && len(totals) > 0 {
		names := make([]string, 0, len(totals))
		for name := range totals {
			names = append(names, name)
		}
		sort.Strings(names)

		fields := make(slogger.Fields, len(names))
		for _, name := range names {
			fields[name] = totals[name]
		}
		slogger.Info(ctx, "Metrics summary", fields)
	}

	if err := t.provider.Shutdown(ctx); err != nil {
		slogger.Warn(ctx, "Failed to shut down meter provider", slogger.Field("error", err.Error()))
	}
}
