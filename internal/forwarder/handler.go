package forwarder

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/shiimaxx/alb-logs-forwarder/internal/logger"
)

const successMessage = "Logs forwarded successfully"

// ErrCredentials is returned when AWS credentials cannot be resolved for an invocation.
var ErrCredentials = errors.New("aws credentials unavailable")

// NotificationProcessor is implemented by *Processor.
type NotificationProcessor interface {
	Process(ctx context.Context, records []events.S3EventRecord) (Summary, error)
}

// MetricsRecorder publishes per-invocation counters.
type MetricsRecorder interface {
	Record(ctx context.Context, summary Summary) error
}

// Response is returned to the Lambda caller.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type Handler struct {
	processor   NotificationProcessor
	credentials aws.CredentialsProvider
	metrics     MetricsRecorder
	logger      zerolog.Logger
	production  bool
}

type HandlerOption func(*Handler)

// WithCredentialsCheck makes every invocation resolve credentials before touching any object.
func WithCredentialsCheck(provider aws.CredentialsProvider) HandlerOption {
	return func(h *Handler) { h.credentials = provider }
}

func WithMetrics(recorder MetricsRecorder) HandlerOption {
	return func(h *Handler) { h.metrics = recorder }
}

// NewHandler builds the invocation entry point. In production error details are replaced with a
// generic message.
func NewHandler(processor NotificationProcessor, log zerolog.Logger, production bool, opts ...HandlerOption) *Handler {
	h := &Handler{
		processor:  processor,
		logger:     log,
		production: production,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one S3 event. The error return is always nil so the caller gets the
// structured response.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (Response, error) {
	ctx = logger.WithRequest(ctx, h.logger)
	log := zerolog.Ctx(ctx)

	log.Info().Int("records", len(event.Records)).Msg("received ALB log event")

	if h.credentials != nil {
		if _, err := h.credentials.Retrieve(ctx); err != nil {
			return h.errorResponse(log, fmt.Errorf("%w: %w", ErrCredentials, err)), nil
		}
	}

	summary, err := h.processor.Process(ctx, event.Records)
	h.recordMetrics(ctx, summary)
	if err != nil {
		return h.errorResponse(log, err), nil
	}

	c := summary.Counts()
	log.Info().
		Int("forwarded", c.Forwarded).
		Int("skipped", c.Skipped).
		Int("failed", c.Failed).
		Int("events", c.Events).
		Msg("finished processing ALB log event")

	return newResponse(http.StatusOK, "message", successMessage), nil
}

func (h *Handler) recordMetrics(ctx context.Context, summary Summary) {
	if h.metrics == nil {
		return
	}
	if err := h.metrics.Record(ctx, summary); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to publish invocation metrics")
	}
}

func (h *Handler) errorResponse(log *zerolog.Logger, err error) Response {
	var apiErr smithy.APIError
	switch {
	case errors.Is(err, ErrCredentials):
		log.Error().Err(err).Msg("AWS credentials missing")
		return newResponse(http.StatusInternalServerError, "error", "AWS credentials error")
	case errors.As(err, &apiErr):
		log.Error().Err(err).Str("error_code", apiErr.ErrorCode()).Msg("AWS service error")
		return newResponse(http.StatusInternalServerError, "error", "AWS service error")
	}

	log.Error().Err(err).Msg("unexpected error")
	log.Debug().Str("detail", fmt.Sprintf("%+v", err)).Msg("unexpected error detail")

	msg := err.Error()
	if h.production {
		msg = "Unexpected error"
	}
	return newResponse(http.StatusInternalServerError, "error", msg)
}

func newResponse(status int, field, value string) Response {
	body, _ := json.Marshal(map[string]string{field: value})
	return Response{StatusCode: status, Body: string(body)}
}
