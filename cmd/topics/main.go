package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"backend/internal/attachments"
	"backend/internal/config"
	"backend/internal/handlers"
	"backend/internal/notifications"
)

func main() {
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	cfg := config.FromEnv()

	ddb := dynamodb.NewFromConfig(awsCfg)
	alerts := notifications.NewTopicAlerts(cfg, ddb, sns.NewFromConfig(awsCfg))
	resolver := attachments.NewResolver(cfg.MediaBucket, s3.NewPresignClient(s3.NewFromConfig(awsCfg)))

	h := handlers.NewTopics(cfg, ddb, alerts, resolver)
	lambda.Start(h.Handle)
}
