package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"backend/internal/config"
	"backend/internal/maintenance"
)

func main() {
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	r := maintenance.NewCountersRepair(config.FromEnv(), dynamodb.NewFromConfig(awsCfg))
	lambda.Start(r.Handle)
}
