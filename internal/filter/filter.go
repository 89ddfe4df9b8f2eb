package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/shiimaxx/alb-logs-forwarder/pkg/models"
)

// recordEnv is what filter expressions see. Values are the raw log tokens.
type recordEnv struct {
	Type                   string `expr:"type"`
	Timestamp              string `expr:"timestamp"`
	ALBID                  string `expr:"alb_id"`
	SourceIP               string `expr:"source_ip"`
	DestinationIP          string `expr:"destination_ip"`
	RequestProcessingTime  string `expr:"request_processing_time"`
	TargetProcessingTime   string `expr:"target_processing_time"`
	ResponseProcessingTime string `expr:"response_processing_time"`
	ELBStatusCode          string `expr:"elb_status_code"`
	TargetStatusCode       string `expr:"target_status_code"`
	ReceivedBytes          string `expr:"received_bytes"`
	SentBytes              string `expr:"sent_bytes"`
	Request                string `expr:"request"` // remaining tokens joined by a space
}

// Contains provides string contains functionality for filter expressions
func (recordEnv) Contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

// Filter is a compiled record filter. The zero value and a nil *Filter keep every record.
type Filter struct {
	program *vm.Program
}

// New compiles expression. An empty expression disables filtering.
func New(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(expression, expr.Env(recordEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter expression: %w", err)
	}

	return &Filter{program: program}, nil
}

// Enabled reports whether an expression is configured.
func (f *Filter) Enabled() bool {
	return f != nil && f.program != nil
}

// Keep reports whether the record passes the filter.
func (f *Filter) Keep(record *models.ALBLogRecord) (bool, error) {
	if !f.Enabled() {
		return true, nil
	}

	env := recordEnv{
		Type:                   record.Type,
		Timestamp:              record.Timestamp,
		ALBID:                  record.ALBID,
		SourceIP:               record.SourceIP,
		DestinationIP:          record.DestinationIP,
		RequestProcessingTime:  record.RequestProcessingTime,
		TargetProcessingTime:   record.TargetProcessingTime,
		ResponseProcessingTime: record.ResponseProcessingTime,
		ELBStatusCode:          record.ELBStatusCode,
		TargetStatusCode:       record.TargetStatusCode,
		ReceivedBytes:          record.ReceivedBytes,
		SentBytes:              record.SentBytes,
		Request:                strings.Join(record.Request, " "),
	}

	result, err := vm.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate filter expression: %w", err)
	}

	return result.(bool), nil
}
