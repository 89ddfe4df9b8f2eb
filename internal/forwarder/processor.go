package forwarder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/shiimaxx/alb-logs-forwarder/internal/alblog"
	"github.com/shiimaxx/alb-logs-forwarder/pkg/models"
)

const maxLineBytes = 1024 * 1024

// S3API is the subset of *s3.Client used by Processor.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Publisher submits log events to a stream and reports how many were accepted.
type Publisher interface {
	Publish(ctx context.Context, stream string, events []models.LogEvent) (int, error)
}

// RecordFilter decides whether a parsed record is forwarded.
type RecordFilter interface {
	Keep(record *models.ALBLogRecord) (bool, error)
}

type keepAll struct{}

func (keepAll) Keep(*models.ALBLogRecord) (bool, error) { return true, nil }

// Processor forwards the objects referenced by S3 notifications, one object at a time.
type Processor struct {
	s3Client  S3API
	publisher Publisher
	filter    RecordFilter
	now       func() time.Time
}

func NewProcessor(s3Client S3API, publisher Publisher, filter RecordFilter) *Processor {
	if filter == nil {
		filter = keepAll{}
	}
	return &Processor{
		s3Client:  s3Client,
		publisher: publisher,
		filter:    filter,
		now:       time.Now,
	}
}

// Process handles every notification independently; a failing object never stops the
// ones after it. The returned error is non-nil only when ctx ends before all objects ran.
func (p *Processor) Process(ctx context.Context, records []events.S3EventRecord) (Summary, error) {
	summary := Summary{Results: make([]Result, 0, len(records))}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("stopped after %d of %d objects: %w", len(summary.Results), len(records), err)
		}

		summary.Results = append(summary.Results, p.processObject(ctx, record.S3.Bucket.Name, record.S3.Object.Key))
	}

	return summary, nil
}

type scanStats struct {
	lines     int
	malformed int
	filtered  int
}

func (p *Processor) processObject(ctx context.Context, bucket, rawKey string) (result Result) {
	result = Result{Bucket: bucket, Key: rawKey}
	log := zerolog.Ctx(ctx).With().Str("bucket", bucket).Str("key", rawKey).Logger()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Error().Err(err).Str("stack", string(debug.Stack())).Msg("unexpected error processing ALB logs")
			result = failed(result, StageInternal, err)
		}
	}()

	key, err := url.QueryUnescape(rawKey)
	if err != nil {
		log.Error().Err(err).Msg("cannot decode object key")
		return failed(result, StageDecodeKey, fmt.Errorf("decode object key: %w", err))
	}
	result.Key = key

	if !alblog.IsLogObject(key) {
		log.Warn().Msg("skipping non-gzip file")
		return skipped(result, "unsupported suffix")
	}

	log.Info().Msg("fetching ALB log file from S3")

	records, stats, stage, err := p.readRecords(ctx, log, bucket, key)
	result.MalformedLines = stats.malformed
	result.FilteredLines = stats.filtered
	if err != nil {
		switch stage {
		case StageDecompress:
			log.Error().Err(err).Msg("file is not a valid gzip archive")
		default:
			log.Error().Err(err).Msg("failed to fetch ALB log file from S3")
		}
		return failed(result, stage, err)
	}

	if stats.lines == 0 {
		log.Warn().Msg("no log data found in the retrieved file")
		return skipped(result, "empty object")
	}

	if len(records) == 0 {
		log.Warn().Int("lines", stats.lines).Msg("no forwardable records in file")
		return skipped(result, "no records")
	}

	result.Stream = alblog.StreamName(key)

	entries, err := BuildEntries(records, p.now())
	if err != nil {
		log.Error().Err(err).Msg("failed to build log events")
		return failed(result, StageInternal, err)
	}

	log.Info().Int("events", len(entries)).Str("log_stream", result.Stream).Msg("forwarding log events to CloudWatch")

	delivered, err := p.publisher.Publish(ctx, result.Stream, entries)
	result.Events = delivered
	if err != nil {
		return failed(result, StagePublish, err)
	}

	result.Outcome = OutcomeForwarded
	return result
}

// readRecords fetches, decompresses and parses one object. On error the returned stage says
// which step failed.
func (p *Processor) readRecords(ctx context.Context, log zerolog.Logger, bucket, key string) ([]*models.ALBLogRecord, scanStats, Stage, error) {
	var stats scanStats

	resp, err := p.s3Client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, stats, StageFetch, fmt.Errorf("get object: %w", err)
	}
	defer resp.Body.Close()

	gzipReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, stats, StageDecompress, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	var records []*models.ALBLogRecord

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.lines++

		record, err := alblog.ParseLine(line)
		if err != nil {
			log.Warn().Err(err).Str("line", line).Msg("skipping malformed log entry")
			stats.malformed++
			continue
		}

		keep, err := p.filter.Keep(record)
		if err != nil {
			log.Warn().Err(err).Msg("filter evaluation failed, keeping record")
			keep = true
		}
		if !keep {
			stats.filtered++
			continue
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, readStage(err), fmt.Errorf("scan gzip stream: %w", err)
	}

	return records, stats, "", nil
}

func readStage(err error) Stage {
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) {
		return StageDecompress
	}
	if errors.Is(err, gzip.ErrChecksum) || errors.Is(err, gzip.ErrHeader) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, bufio.ErrTooLong) {
		return StageDecompress
	}
	return StageFetch
}

func skipped(r Result, reason string) Result {
	r.Outcome = OutcomeSkipped
	r.Reason = reason
	return r
}

func failed(r Result, stage Stage, err error) Result {
	r.Outcome = OutcomeFailed
	r.Stage = stage
	r.Reason = err.Error()
	r.Err = err
	return r
}
