package alblog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shiimaxx/alb-logs-forwarder/pkg/models"
)

// AWS ALB log field positions (0-based)
// Fields: type time elb client:port target:port request_processing_time target_processing_time
//
//	response_processing_time elb_status_code target_status_code received_bytes sent_bytes
//	"request" "user_agent" ssl_cipher ssl_protocol target_group_arn ...
//
// Everything from the request onwards is kept as raw tokens.
const (
	typeFieldIndex = iota
	timestampFieldIndex
	elbFieldIndex
	clientFieldIndex
	targetFieldIndex
	requestProcessingTimeFieldIndex
	targetProcessingTimeFieldIndex
	responseProcessingTimeFieldIndex
	elbStatusCodeFieldIndex
	targetStatusCodeFieldIndex
	receivedBytesFieldIndex
	sentBytesFieldIndex

	MinFields
)

// ErrTooFewFields is returned for lines shorter than MinFields tokens.
var ErrTooFewFields = errors.New("too few fields")

// ParseLine splits a log line on whitespace and maps the leading fields positionally.
// It performs no type or range validation.
func ParseLine(line string) (*models.ALBLogRecord, error) {
	fields := strings.Fields(line)
	if len(fields) < MinFields {
		return nil, fmt.Errorf("%w: expected at least %d, got %d", ErrTooFewFields, MinFields, len(fields))
	}

	request := make([]string, len(fields)-MinFields)
	copy(request, fields[MinFields:])

	return &models.ALBLogRecord{
		Type:                   fields[typeFieldIndex],
		Timestamp:              fields[timestampFieldIndex],
		ALBID:                  fields[elbFieldIndex],
		SourceIP:               fields[clientFieldIndex],
		DestinationIP:          fields[targetFieldIndex],
		RequestProcessingTime:  fields[requestProcessingTimeFieldIndex],
		TargetProcessingTime:   fields[targetProcessingTimeFieldIndex],
		ResponseProcessingTime: fields[responseProcessingTimeFieldIndex],
		ELBStatusCode:          fields[elbStatusCodeFieldIndex],
		TargetStatusCode:       fields[targetStatusCodeFieldIndex],
		ReceivedBytes:          fields[receivedBytesFieldIndex],
		SentBytes:              fields[sentBytesFieldIndex],
		Request:                request,
	}, nil
}
