package models

// ALBLogRecord is one ALB access-log line split into its leading positional fields.
// Values are kept exactly as they appear in the log; nothing is converted to numbers.
type ALBLogRecord struct {
	Type                   string   `json:"type"`
	Timestamp              string   `json:"timestamp"`
	ALBID                  string   `json:"alb_id"`
	SourceIP               string   `json:"source_ip"`
	DestinationIP          string   `json:"destination_ip"`
	RequestProcessingTime  string   `json:"request_processing_time"`
	TargetProcessingTime   string   `json:"target_processing_time"`
	ResponseProcessingTime string   `json:"response_processing_time"`
	ELBStatusCode          string   `json:"elb_status_code"`
	TargetStatusCode       string   `json:"target_status_code"`
	ReceivedBytes          string   `json:"received_bytes"`
	SentBytes              string   `json:"sent_bytes"`
	Request                []string `json:"request"`
}

// LogEvent is a single entry ready for PutLogEvents.
type LogEvent struct {
	Timestamp int64
	Message   string
}
