package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"haircare-backend/internal/bootstrap"
	"haircare-backend/internal/shared/config"
	"haircare-backend/internal/shared/metrics"
	"haircare-backend/internal/shared/telemetry"
	"haircare-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	return processBatch(ctx, app.Reports, event), nil
}

// processBatch reports only retryable failures back to SQS. Unparseable
// records are logged and acknowledged.
func processBatch(ctx context.Context, reviewer workerproc.Reviewer, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncModerationJobsReceived()
		msg, meta, err := workerproc.ParseMessage(record.Body)
		if err != nil {
			telemetry.Error("lambda_worker.moderation.unparseable", map[string]any{
				"sqs_message_id": record.MessageId,
				"body_len":       meta.BodyLen,
				"body_sha256":    meta.BodySHA,
				"error":          err.Error(),
			})
			continue
		}
		if _, err := workerproc.HandleMessage(ctx, reviewer, msg); err != nil {
			telemetry.Error("lambda_worker.moderation.failed", map[string]any{
				"sqs_message_id": record.MessageId,
				"target_type":    msg.TargetType,
				"target_id":      msg.TargetID,
				"error":          err.Error(),
			})
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
