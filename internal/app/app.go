// Package app assembles the processing pipeline from configuration. The
// HTTP entry point and the retry worker share it so both run exactly the
// same adapters, scenarios and dispatcher.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"omc/internal/config"
	"omc/internal/core"
	"omc/internal/external"
	"omc/internal/notify"
	"omc/internal/processor"
	"omc/internal/queries"
	"omc/internal/register"
	"omc/internal/scenarios"
	"omc/internal/types"
)

// Components is the wired pipeline of one process.
type Components struct {
	Config     *config.Config
	Adapters   *queries.Adapters
	Dispatcher *notify.Dispatcher
	Retry      *notify.RetryPublisher
	Processor  *processor.Processor
	Register   *register.Register
}

// Build wires the pipeline described by cfg. AWS clients are only created
// for the features that need them: CloudWatch when metrics are enabled and
// SQS when a retry queue is configured.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...external.BaseClientOption) (*Components, error) {
	typed := NewLogger(logger)

	adapters, err := queries.NewAdapters(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("selecting query adapters: %w", err)
	}

	templateMap, err := cfg.Notify.TemplateMap()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	resolver := scenarios.NewResolver(scenarios.Options{
		Templates: scenarios.NewTemplates(templateMap),
		Scenario:  cfg.Scenario,
		Logger:    typed.With("component", "scenarios"),
	})

	factory, err := external.NewDeliveryClientFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building delivery clients: %w", err)
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	var metrics notify.Metrics = notify.NopMetrics{}
	if cfg.Observability.EnableMetrics {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		cw := cloudwatch.NewFromConfig(c, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		metrics = notify.NewCloudWatchMetrics(cw, cfg.Observability.MetricNamespace, typed.With("component", "metrics"))
	}

	dispatcher := notify.NewDispatcher(factory, notify.RateLimit{
		PerSecond: cfg.Notify.RatePerSecond,
		Burst:     cfg.Notify.RateBurst,
	}, metrics, typed.With("component", "dispatcher"))

	c := &Components{
		Config:     cfg,
		Adapters:   adapters,
		Dispatcher: dispatcher,
	}

	var retry processor.RetryQueue
	if cfg.AWS.RetryQueueURL != "" {
		ac, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := sqs.NewFromConfig(ac, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		c.Retry = notify.NewRetryPublisher(client, cfg.AWS.RetryQueueURL, typed.With("component", "retry"))
		retry = c.Retry
	}

	c.Processor = processor.New(adapters, queries.SettingsFrom(cfg.Scenario), resolver, dispatcher, retry, typed)
	c.Register = register.New(cfg.Build.Version, typed, c.versioned()...)
	return c, nil
}

// versioned lists everything the versions register reports on.
func (c *Components) versioned() []register.Versioned {
	var out []register.Versioned
	for _, a := range c.Adapters.All() {
		out = append(out, a)
	}
	return append(out, c.Dispatcher)
}

// HealthProbes returns the dependencies /health checks.
func (c *Components) HealthProbes() []core.HealthProbe {
	if c.Retry == nil {
		return nil
	}
	return []core.HealthProbe{c.Retry}
}

// NewSlog creates the JSON process logger for level.
func NewSlog(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// slogAdapter wraps *slog.Logger to implement types.Logger. slog's With
// returns *slog.Logger rather than types.Logger, hence the wrapper.
type slogAdapter struct {
	logger *slog.Logger
}

// NewLogger adapts logger to types.Logger.
func NewLogger(logger *slog.Logger) types.Logger {
	if logger == nil {
		return types.NopLogger{}
	}
	return &slogAdapter{logger: logger}
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

var _ types.Logger = (*slogAdapter)(nil)
