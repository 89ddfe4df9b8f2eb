package forwarder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/shiimaxx/alb-logs-forwarder/pkg/models"
)

const (
	validKey   = "alb-access-logs/AWSLogs/799960128252/elasticloadbalancing/us-west-2/2025/01/30/my-alb-id_20250130T0955Z_52.42.20.161_3eya5yyt.log.gz"
	validLine  = `h2 2025-02-06T13:14:11.060505Z app/my-alb/50dc6c495c0c9188 198.51.100.100:57832 203.0.113.10:80 0.001 0.003 0.000 200 200 218 587 "GET https://api.example.com:443/users/123 HTTP/2.0" "curl/8.5.0"`
	thirteen   = "h2 2025-02-06T13:14:11.060505Z app/my-alb/1 1.1.1.1:1 2.2.2.2:80 0.001 0.002 0.003 200 200 10 20 request"
	shortLine  = "h2 2025-02-06T13:14:11.060505Z app/my-alb/1 1.1.1.1:1"
	testBucket = "alb-logs-bucket"
)

func gzipBytes(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type fakeS3 struct {
	objects map[string][]byte
	errs    map[string]error
	gets    []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.gets = append(f.gets, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey: The specified key does not exist.")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

type publishCall struct {
	stream string
	events []models.LogEvent
}

type fakePublisher struct {
	calls []publishCall
	err   error
	// delivered is reported alongside err; without err every event counts as delivered.
	delivered int
}

func (f *fakePublisher) Publish(_ context.Context, stream string, events []models.LogEvent) (int, error) {
	f.calls = append(f.calls, publishCall{stream: stream, events: events})
	if f.err != nil {
		return f.delivered, f.err
	}
	return len(events), nil
}

func s3Event(keys ...string) events.S3Event {
	var event events.S3Event
	for _, key := range keys {
		event.Records = append(event.Records, events.S3EventRecord{
			EventName: "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: testBucket},
				Object: events.S3Object{Key: key},
			},
		})
	}
	return event
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}
