package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/shiimaxx/alb-logs-forwarder/internal/forwarder"
)

const (
	metricNameForwardedObjects = "ForwardedObjects"
	metricNameSkippedObjects   = "SkippedObjects"
	metricNameFailedObjects    = "FailedObjects"
	metricNameForwardedEvents  = "ForwardedEvents"
	metricNameMalformedLines   = "MalformedLines"
	metricNameFilteredLines    = "FilteredLines"

	metricDimensionService = "Service"
	serviceName            = "alb_logs_forwarder"
)

// Recorder publishes the outcome counters of an invocation.
type Recorder struct {
	sink *metricSink
	now  func() time.Time
}

func NewRecorder(client CloudWatchAPI, namespace string) *Recorder {
	return &Recorder{
		sink: &metricSink{
			client:    client,
			namespace: namespace,
			batchSize: defaultMetricBatchSize,
		},
		now: time.Now,
	}
}

// Record publishes one data point per counter. Invocations without notifications publish nothing.
func (r *Recorder) Record(ctx context.Context, summary forwarder.Summary) error {
	if len(summary.Results) == 0 {
		return nil
	}
	return r.sink.put(ctx, metricData(summary.Counts(), r.now()))
}

func metricData(c forwarder.Counts, timestamp time.Time) []types.MetricDatum {
	dimensions := []types.Dimension{
		{Name: aws.String(metricDimensionService), Value: aws.String(serviceName)},
	}

	values := []struct {
		name  string
		value int
	}{
		{metricNameForwardedObjects, c.Forwarded},
		{metricNameSkippedObjects, c.Skipped},
		{metricNameFailedObjects, c.Failed},
		{metricNameForwardedEvents, c.Events},
		{metricNameMalformedLines, c.MalformedLines},
		{metricNameFilteredLines, c.FilteredLines},
	}

	data := make([]types.MetricDatum, 0, len(values))
	for _, v := range values {
		data = append(data, types.MetricDatum{
			MetricName: aws.String(v.name),
			Timestamp:  aws.Time(timestamp),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(v.value)),
			Unit:       types.StandardUnitCount,
		})
	}

	return data
}
