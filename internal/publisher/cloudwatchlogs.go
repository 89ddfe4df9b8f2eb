package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/shiimaxx/alb-logs-forwarder/pkg/models"
)

// PutLogEvents limits.
const (
	MaxEventsPerRequest = 10000
	MaxRequestSizeBytes = 1048576 // 1MB
	eventOverheadBytes  = 26
)

// ErrPublishFailed wraps every error returned by Publish.
var ErrPublishFailed = errors.New("publish failed")

// LogsAPI is the subset of *cloudwatchlogs.Client used by LogsPublisher.
type LogsAPI interface {
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// LogsPublisher writes log events into streams of a single log group.
type LogsPublisher struct {
	client       LogsAPI
	logGroup     string
	maxBatchSize int
}

func NewLogsPublisher(client LogsAPI, logGroup string, maxBatchSize int) *LogsPublisher {
	if maxBatchSize <= 0 || maxBatchSize > MaxEventsPerRequest {
		maxBatchSize = MaxEventsPerRequest
	}
	return &LogsPublisher{
		client:       client,
		logGroup:     logGroup,
		maxBatchSize: maxBatchSize,
	}
}

// EnsureStream creates the stream. A stream that already exists is not an error.
func (p *LogsPublisher) EnsureStream(ctx context.Context, stream string) error {
	_, err := p.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(p.logGroup),
		LogStreamName: aws.String(stream),
	})
	if err == nil {
		return nil
	}

	var exists *types.ResourceAlreadyExistsException
	if errors.As(err, &exists) {
		return nil
	}

	return fmt.Errorf("create log stream %q: %w", stream, err)
}

// Publish ensures the stream exists and submits events to it. Nothing is retried.
// The returned count is the number of events accepted before any failure.
func (p *LogsPublisher) Publish(ctx context.Context, stream string, events []models.LogEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	log := zerolog.Ctx(ctx).With().Str("log_group", p.logGroup).Str("log_stream", stream).Logger()

	if err := p.EnsureStream(ctx, stream); err != nil {
		return 0, p.fail(log, err)
	}

	delivered := 0
	for i, batch := range p.createEventBatches(events) {
		out, err := p.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
			LogGroupName:  aws.String(p.logGroup),
			LogStreamName: aws.String(stream),
			LogEvents:     batch,
		})
		if err != nil {
			log.Warn().Int("delivered", delivered).Int("events", len(events)).Msg("stopping after failed batch")
			return delivered, p.fail(log, fmt.Errorf("put log events batch %d: %w", i+1, err))
		}
		delivered += len(batch)

		if out != nil && out.RejectedLogEventsInfo != nil {
			info := out.RejectedLogEventsInfo
			log.Warn().
				Int32("too_new_start_index", aws.ToInt32(info.TooNewLogEventStartIndex)).
				Int32("too_old_end_index", aws.ToInt32(info.TooOldLogEventEndIndex)).
				Int32("expired_end_index", aws.ToInt32(info.ExpiredLogEventEndIndex)).
				Msg("CloudWatch Logs rejected part of the batch")
		}
	}

	log.Info().Int("events", len(events)).Msg("forwarded log events to CloudWatch Logs")

	return delivered, nil
}

func (p *LogsPublisher) fail(log zerolog.Logger, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		log.Error().
			Err(err).
			Str("error_code", apiErr.ErrorCode()).
			Msg("CloudWatch Logs rejected the request")
	} else {
		log.Error().Err(err).Msg("unexpected error forwarding log events")
		log.Debug().Str("detail", fmt.Sprintf("%+v", err)).Msg("unexpected error detail")
	}

	return fmt.Errorf("%w: %w", ErrPublishFailed, err)
}

// createEventBatches splits events so every batch stays within the PutLogEvents count and size limits.
func (p *LogsPublisher) createEventBatches(events []models.LogEvent) [][]types.InputLogEvent {
	var batches [][]types.InputLogEvent
	var currentBatch []types.InputLogEvent
	currentSize := 0

	for _, event := range events {
		size := len(event.Message) + eventOverheadBytes
		if len(currentBatch) > 0 && (len(currentBatch) >= p.maxBatchSize || currentSize+size > MaxRequestSizeBytes) {
			batches = append(batches, currentBatch)
			currentBatch = nil
			currentSize = 0
		}

		currentBatch = append(currentBatch, types.InputLogEvent{
			Message:   aws.String(event.Message),
			Timestamp: aws.Int64(event.Timestamp),
		})
		currentSize += size
	}

	if len(currentBatch) > 0 {
		batches = append(batches, currentBatch)
	}

	return batches
}
