package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/shiimaxx/alb-logs-forwarder/internal/filter"
	"github.com/shiimaxx/alb-logs-forwarder/internal/forwarder"
	"github.com/shiimaxx/alb-logs-forwarder/internal/metrics"
	"github.com/shiimaxx/alb-logs-forwarder/internal/publisher"
	appConfig "github.com/shiimaxx/alb-logs-forwarder/pkg/config"
)

type components struct {
	filter    *filter.Filter
	processor *forwarder.Processor
	// recorder is nil when metrics are disabled.
	recorder *metrics.Recorder
}

// NewHandler builds the AWS clients once and injects them into the forwarding pipeline.
func NewHandler(ctx context.Context, cfg *appConfig.Config, log zerolog.Logger) (*forwarder.Handler, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	c, err := buildComponents(cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	opts := []forwarder.HandlerOption{forwarder.WithCredentialsCheck(awsCfg.Credentials)}
	if c.recorder != nil {
		opts = append(opts, forwarder.WithMetrics(c.recorder))
	}

	log.Info().
		Str("log_group", cfg.LogGroupName).
		Bool("filter", c.filter.Enabled()).
		Bool("metrics", c.recorder != nil).
		Msg("ALB logs forwarder initialised")

	return forwarder.NewHandler(c.processor, log, cfg.IsProduction(), opts...), nil
}

func buildComponents(cfg *appConfig.Config, awsCfg aws.Config) (*components, error) {
	recordFilter, err := filter.New(cfg.FilterExpression)
	if err != nil {
		return nil, fmt.Errorf("build record filter: %w", err)
	}

	logsPublisher := publisher.NewLogsPublisher(cloudwatchlogs.NewFromConfig(awsCfg), cfg.LogGroupName, cfg.MaxBatchEvents)

	c := &components{
		filter:    recordFilter,
		processor: forwarder.NewProcessor(s3.NewFromConfig(awsCfg), logsPublisher, recordFilter),
	}
	if cfg.MetricsEnabled {
		c.recorder = metrics.NewRecorder(cloudwatch.NewFromConfig(awsCfg), cfg.MetricNamespace)
	}

	return c, nil
}
