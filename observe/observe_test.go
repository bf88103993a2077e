package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			"minimal valid",
			Config{ServiceName: "nickdb"},
			nil,
		},
		{
			"missing service name",
			Config{},
			ErrMissingServiceName,
		},
		{
			"invalid tracing exporter",
			Config{ServiceName: "nickdb", Tracing: TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}},
			ErrInvalidTracingExporter,
		},
		{
			"sample pct out of range",
			Config{ServiceName: "nickdb", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5}},
			ErrInvalidSamplePct,
		},
		{
			"invalid metrics exporter",
			Config{ServiceName: "nickdb", Metrics: MetricsConfig{Enabled: true, Exporter: "carrier-pigeon"}},
			ErrInvalidMetricsExporter,
		},
		{
			"invalid log level",
			Config{ServiceName: "nickdb", Logging: LoggingConfig{Enabled: true, Level: "loud"}},
			ErrInvalidLogLevel,
		},
		{
			"disabled subsystems skip validation",
			Config{ServiceName: "nickdb", Tracing: TracingConfig{Exporter: "carrier-pigeon"}},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_AllDisabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "nickdb"})
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	if obs.Tracer() == nil {
		t.Error("disabled tracing should still yield a noop tracer")
	}
	if obs.Meter() == nil {
		t.Error("disabled metrics should still yield a noop meter")
	}
	if obs.Logger() == nil {
		t.Error("disabled logging should still yield a noop logger")
	}

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown of disabled observer failed: %v", err)
	}
	// Shutdown is idempotent.
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown failed: %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("NewObserver = %v, want ErrMissingServiceName", err)
	}
}

func TestNopLogger_DoesNotPanic(t *testing.T) {
	l := NopLogger()
	ctx := context.Background()
	l.Debug(ctx, "debug")
	l.Info(ctx, "info", Field{Key: "k", Value: 1})
	l.Warn(ctx, "warn")
	l.Error(ctx, "error")
}
