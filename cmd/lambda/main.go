package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"demo/interview/internal/config"
	"demo/interview/internal/ingest"
	"demo/interview/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	// LAMBDA_MODE=ingest consumes order messages from an SQS trigger instead
	// of serving API Gateway requests.
	if os.Getenv("LAMBDA_MODE") == "ingest" {
		lambda.Start(ingest.NewSQSHandler(app.Service).Handle)
		return
	}

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		log.Printf("running local server on %s", cfg.HTTPAddr)
		if err := app.Router.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(app.Router)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
