package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadEvent(t *testing.T) {
	path := writeFile(t, `{"Records":[{"eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"alb-logs"},"object":{"key":"AWSLogs/1/elasticloadbalancing/us-west-2/2025/01/30/my-alb_x.log.gz"}}}]}`)

	event, err := readEvent(path)
	require.NoError(t, err)

	require.Len(t, event.Records, 1)
	assert.Equal(t, "alb-logs", event.Records[0].S3.Bucket.Name)
	assert.Equal(t, "AWSLogs/1/elasticloadbalancing/us-west-2/2025/01/30/my-alb_x.log.gz", event.Records[0].S3.Object.Key)
}

func TestReadEvent_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json")},
		{name: "invalid json", path: writeFile(t, `{"Records":`)},
		{name: "no records", path: writeFile(t, `{"Records":[]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readEvent(tt.path)
			assert.Error(t, err)
		})
	}
}
