package forwarder

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/shiimaxx/alb-logs-forwarder/pkg/models"
)

// BuildEntries serializes records into log events stamped with now (ingestion time, not the
// record's own timestamp). Order is preserved.
func BuildEntries(records []*models.ALBLogRecord, now time.Time) ([]models.LogEvent, error) {
	timestamp := now.UnixMilli()
	entries := make([]models.LogEvent, 0, len(records))

	for i, record := range records {
		if record.Request == nil {
			withRequest := *record
			withRequest.Request = []string{}
			record = &withRequest
		}

		message, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		entries = append(entries, models.LogEvent{Timestamp: timestamp, Message: string(message)})
	}

	return entries, nil
}
