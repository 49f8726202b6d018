package logging

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agora-social/agora/pkg/config"
)

// Logger is the application logger
var Logger *zap.Logger

// parseLevel accepts zap level names in any case and falls back to info.
func parseLevel(raw string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// InitLogger replaces the global logger according to cfg. Format "text"
// gives colored console output; anything else is JSON, optionally in the
// flat Scalyr layout.
func InitLogger(cfg *config.LoggingConfig) error {
	level := parseLevel(cfg.Level)
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}

	if cfg.Format == "text" {
		zc := zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err := zc.Build(opts...)
		if err != nil {
			return err
		}
		Logger = l
		return nil
	}

	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.ScalyrFormat {
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		enc = NewScalyrEncoder(ec)
	} else {
		enc = zapcore.NewJSONEncoder(ec)
	}

	Logger = zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level), opts...)
	return nil
}

// GetLogger returns the global logger, creating a production logger on
// first use when InitLogger was never called.
func GetLogger() *zap.Logger {
	if Logger == nil {
		Logger, _ = zap.NewProduction()
	}
	return Logger
}

// WithComponent adds component name to logger
func WithComponent(component string) *zap.Logger {
	return GetLogger().With(zap.String("component", component))
}

// FromContext returns base decorated with the trace and span ids of the
// span carried by ctx, if any.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = GetLogger()
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return base
	}
	return base.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
