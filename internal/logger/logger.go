package logger

import (
	"context"
	"io"
	stdlog "log"
	"os"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shiimaxx/alb-logs-forwarder/pkg/config"
)

const serviceName = "alb_logs_forwarder"

// New builds the process logger. JSON goes to stdout so CloudWatch can index it;
// LOG_PRETTY switches to the console writer for local runs.
func New(cfg *config.Config) zerolog.Logger {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	w := out
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("stage", cfg.Stage).
		Logger()

	// components fall back to this when the context carries no logger
	zerolog.DefaultContextLogger = &logger

	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)

	return logger
}

// WithRequest returns a context whose logger is tagged with the invocation's request id.
// Outside Lambda a random id is generated.
func WithRequest(ctx context.Context, base zerolog.Logger) context.Context {
	requestID := ""
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		requestID = lc.AwsRequestID
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	l := base.With().Str("request_id", requestID).Logger()
	return l.WithContext(ctx)
}
