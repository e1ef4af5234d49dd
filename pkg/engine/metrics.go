package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("treepath.engine")
	meter  = otel.Meter("treepath.engine")
)

var (
	queryLatency metric.Float64Histogram
	queryTotal   metric.Int64Counter
	matchesFound metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics 初始化指标，可重复调用
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		queryLatency, err = meter.Float64Histogram(
			"treepath_query_duration_seconds",
			metric.WithDescription("Duration of path queries"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		queryTotal, err = meter.Int64Counter(
			"treepath_query_total",
			metric.WithDescription("Total number of path queries"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		matchesFound, err = meter.Int64Histogram(
			"treepath_query_matches",
			metric.WithDescription("Number of nodes matched per query"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startQuerySpan(ctx context.Context, q *Query) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.Apply",
		trace.WithAttributes(
			attribute.String("query.name", q.Label()),
			attribute.String("query.action", string(q.Action)),
			attribute.String("query.path", q.Path),
		),
	)
}

func setQuerySpanResult(span trace.Span, count int) {
	span.SetAttributes(attribute.Int("query.count", count))
}

func recordQueryMetrics(ctx context.Context, action ActionType, duration time.Duration, count int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("action", string(action)),
		attribute.Bool("success", success),
	)

	queryLatency.Record(ctx, duration.Seconds(), attrs)
	queryTotal.Add(ctx, 1, attrs)
	if success {
		matchesFound.Record(ctx, int64(count), metric.WithAttributes(
			attribute.String("action", string(action)),
		))
	}
}
