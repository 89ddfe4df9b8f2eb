package forwarder

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiimaxx/alb-logs-forwarder/pkg/models"
)

func TestBuildEntries(t *testing.T) {
	now := time.Date(2025, 1, 30, 9, 55, 0, 0, time.UTC)
	records := []*models.ALBLogRecord{
		{Type: "h2", Timestamp: "2025-01-30T09:00:00.000000Z", ELBStatusCode: "200", Request: []string{`"GET`, "/", `HTTP/2.0"`}},
		{Type: "http", Timestamp: "2020-01-01T00:00:00.000000Z", ELBStatusCode: "502", Request: []string{}},
	}

	entries, err := BuildEntries(records, now)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Equal(t, now.UnixMilli(), e.Timestamp)
	}

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[0].Message), &first))
	assert.Equal(t, "h2", first["type"])
	assert.Equal(t, "200", first["elb_status_code"])
	assert.Equal(t, []any{`"GET`, "/", `HTTP/2.0"`}, first["request"])
	assert.Len(t, first, 13)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[1].Message), &second))
	assert.Equal(t, "http", second["type"])
	assert.Equal(t, []any{}, second["request"])
}

func TestBuildEntries_NilRequestSerializesAsArray(t *testing.T) {
	entries, err := BuildEntries([]*models.ALBLogRecord{{Type: "h2"}}, time.Now())
	require.NoError(t, err)

	assert.Contains(t, entries[0].Message, `"request":[]`)
}

func TestBuildEntries_Empty(t *testing.T) {
	entries, err := BuildEntries(nil, time.Now())

	assert.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
