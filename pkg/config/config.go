package config

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const productionStage = "prod"

type Config struct {
	LogGroupName     string `koanf:"alb_log_group_name" validate:"required"`
	Stage            string `koanf:"stage" validate:"required"`
	LogLevel         string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogPretty        bool   `koanf:"log_pretty"`
	FilterExpression string `koanf:"filter_expression"`
	MetricsEnabled   bool   `koanf:"metrics_enabled"`
	MetricNamespace  string `koanf:"metric_namespace" validate:"required"`
	MaxBatchEvents   int    `koanf:"max_batch_events" validate:"min=1,max=10000"`
}

func defaults() *Config {
	return &Config{
		LogGroupName:    "/ALB/AccessLogs",
		Stage:           "Test",
		LogLevel:        "info",
		MetricsEnabled:  true,
		MetricNamespace: "FargateCluster",
		MaxBatchEvents:  10000,
	}
}

// Load reads the process environment once. Unset variables keep their defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.ProviderWithValue("", ".", skipEmpty), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.FilterExpression = strings.TrimSpace(cfg.FilterExpression)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := validateCloudWatchNamespace(cfg.MetricNamespace); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// validateCloudWatchNamespace applies the PutMetricData namespace rules.
func validateCloudWatchNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("metric namespace is empty")
	}
	if len(ns) > 255 {
		return fmt.Errorf("metric namespace exceeds 255 characters")
	}
	if strings.HasPrefix(ns, "AWS/") {
		return fmt.Errorf("metric namespace %q uses the reserved AWS/ prefix", ns)
	}
	for _, r := range ns {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return fmt.Errorf("metric namespace %q contains invalid character %q", ns, r)
		}
	}
	return nil
}

// skipEmpty lowercases keys and drops variables set to an empty string, so they fall back to defaults.
func skipEmpty(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return strings.ToLower(key), value
}

// IsProduction reports whether error details must be hidden from invocation responses.
func (c *Config) IsProduction() bool {
	return c.Stage == productionStage
}
