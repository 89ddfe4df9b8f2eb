package metrics

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// defaultMetricBatchSize keeps the recorder's whole counter set in one PutMetricData call.
const defaultMetricBatchSize = 20

// CloudWatchAPI is the subset of *cloudwatch.Client used for publishing.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// metricSink writes data points into one namespace.
type metricSink struct {
	client    CloudWatchAPI
	namespace string
	batchSize int
}

// put sends data in batches of batchSize. The first failing batch stops the rest.
func (s *metricSink) put(ctx context.Context, data []types.MetricDatum) error {
	size := s.batchSize
	if size <= 0 {
		size = defaultMetricBatchSize
	}

	for batch := range slices.Chunk(data, size) {
		_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(s.namespace),
			MetricData: batch,
		})
		if err != nil {
			return fmt.Errorf("put metric data [%s]: %w", metricNames(batch), err)
		}
	}

	return nil
}

func metricNames(data []types.MetricDatum) string {
	names := make([]string, 0, len(data))
	for _, d := range data {
		names = append(names, aws.ToString(d.MetricName))
	}
	return strings.Join(names, ",")
}
