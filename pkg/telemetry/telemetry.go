// Package telemetry 初始化 OpenTelemetry 追踪和指标
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// ErrNilContext Init 需要 context
var ErrNilContext = errors.New("telemetry: nil context")

// Config 追踪配置
type Config struct {
	ServiceName    string
	ServiceVersion string
	Writer         io.Writer // span 和指标的输出位置，默认 os.Stderr
	PrettyPrint    bool
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		ServiceName:    "treepath",
		ServiceVersion: "0.1.0",
		Writer:         os.Stderr,
		PrettyPrint:    true,
	}
}

// Init 安装输出到 Writer 的全局 TracerProvider 和 MeterProvider
//
// 返回的 shutdown 必须在退出前调用，否则缓冲的 span 和未导出的指标会丢失：
//
//	shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	tp, err := initTracer(cfg, w, res)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	mp, err := initMeter(cfg, w, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	// 先关 tracer 再关 meter，两者的错误都返回
	shutdown = func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	return shutdown, nil
}

func initTracer(cfg Config, w io.Writer, res *resource.Resource) (*trace.TracerProvider, error) {
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
	), nil
}

// initMeter 周期导出，shutdown 时再导出一次
func initMeter(cfg Config, w io.Writer, res *resource.Resource) (*metric.MeterProvider, error) {
	opts := []stdoutmetric.Option{stdoutmetric.WithWriter(w)}
	if cfg.PrettyPrint {
		opts = append(opts, stdoutmetric.WithPrettyPrint())
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create stdout metric exporter: %w", err)
	}

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter)),
	), nil
}
