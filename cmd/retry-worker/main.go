// Package main is the retry worker Lambda. It consumes the retry queue that
// the API fills when a backend was unavailable and runs each event through
// the same pipeline again.
//
// Per record:
//   - undecodable bodies are logged and acknowledged
//   - success, an aborted pipeline or a permanent failure is acknowledged
//   - a backend still unavailable is re-queued by the processor with a
//     longer delay and acknowledged; when re-queueing itself fails the
//     record is reported as a batch item failure so SQS redelivers it
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"omc/internal/app"
	"omc/internal/config"
	"omc/internal/notify"
	"omc/internal/processor"
	"omc/internal/types"
)

// RetryProcessor re-runs one queued event. *processor.Processor implements it.
type RetryProcessor interface {
	ProcessRetry(ctx context.Context, msg notify.RetryMessage) (processor.Summary, error)
}

// Handler holds the dependencies of the Lambda handler.
type Handler struct {
	processor RetryProcessor
	logger    types.Logger
}

// Handle processes one SQS batch and reports the records to redeliver.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("retry record will be redelivered",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}
	return response, nil
}

// processRecord returns an error only when the record must be redelivered.
func (h *Handler) processRecord(ctx context.Context, record events.SQSMessage) error {
	msg, err := notify.DecodeRetryMessage(record.Body)
	if err != nil {
		h.logger.Error("dropping undecodable retry message",
			"message_id", record.MessageId,
			"error", err.Error(),
		)
		return nil
	}

	ctx = types.WithRequestID(ctx, msg.RequestID)
	logger := h.logger.With("message_id", record.MessageId, "request_id", msg.RequestID, "attempt", msg.Attempt)
	ctx = types.WithLogger(ctx, logger)

	summary, err := h.processor.ProcessRetry(ctx, msg)
	switch {
	case err == nil:
		logger.Info("retry processed",
			"scenario", summary.Scenario,
			"aborted", summary.Aborted,
			"delivered", summary.Delivered(),
		)
		return nil
	case summary.QueuedForRetry:
		return nil
	case types.KindOf(err) == types.KindBackendUnavailable && msg.Attempt < processor.MaxRetryAttempts:
		return fmt.Errorf("re-queue failed: %w", err)
	default:
		logger.Error("retry failed permanently",
			"kind", string(types.KindOf(err)),
			"error", err.Error(),
		)
		return nil
	}
}

func main() {
	bootLogger := app.NewSlog(os.Getenv("LOG_LEVEL"))

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-west-1"
	}
	cfg, err := config.LoadConfig(config.NewSecretsManagerProvider(region, os.Getenv("AWS_ENDPOINT_URL")))
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := app.NewSlog(cfg.LogLevel)
	logger.Info("retry worker initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"retry_queue", cfg.AWS.RetryQueueURL,
	)

	components, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}

	handler := &Handler{
		processor: components.Processor,
		logger:    app.NewLogger(logger).With("component", "retry-worker"),
	}

	// Local mode reads one SQS event from stdin instead of starting the
	// Lambda runtime:
	//   echo '{"Records":[{"messageId":"1","body":"{...}"}]}' | go run ./cmd/retry-worker
	if cfg.Environment == "local" {
		if err := runLocal(handler, os.Stdin, logger); err != nil {
			logger.Error("local run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(handler.Handle)
}

func runLocal(handler *Handler, in io.Reader, logger *slog.Logger) error {
	payload, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(payload, &sqsEvent); err != nil {
		return fmt.Errorf("parse SQS event: %w", err)
	}
	response, err := handler.Handle(context.Background(), sqsEvent)
	if err != nil {
		return err
	}
	logger.Info("local run completed",
		"records", len(sqsEvent.Records),
		"failures", len(response.BatchItemFailures),
	)
	return nil
}
