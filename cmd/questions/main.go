package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

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

	blocklist, err := config.LoadEmailBlocklist(ctx, ssm.NewFromConfig(awsCfg), cfg.BlocklistParameterName())
	if err != nil {
		log.Printf("load email blocklist: %v", err)
	}
	cfg.EmailBlocklist = blocklist

	ddb := dynamodb.NewFromConfig(awsCfg)
	sender := notifications.NewEmailSender(cfg, sesv2.NewFromConfig(awsCfg))

	h := handlers.NewQuestions(cfg, ddb, sender)
	lambda.Start(h.Handle)
}
