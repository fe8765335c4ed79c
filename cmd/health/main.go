package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"backend/internal/config"
)

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Project string `json:"project"`
	Stage   string `json:"stage"`
}

func main() {
	cfg := config.FromEnv()

	lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		body, _ := json.Marshal(HealthResponse{
			OK:      true,
			Service: "assembly-qa-backend",
			Project: cfg.Project,
			Stage:   cfg.Stage,
		})

		return events.APIGatewayV2HTTPResponse{
			StatusCode: 200,
			Headers: map[string]string{
				"content-type":                "application/json",
				"access-control-allow-origin": "*",
			},
			Body: string(body),
		}, nil
	})
}
