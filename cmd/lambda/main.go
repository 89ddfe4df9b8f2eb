package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/shiimaxx/alb-logs-forwarder/internal/app"
	"github.com/shiimaxx/alb-logs-forwarder/internal/logger"
	appConfig "github.com/shiimaxx/alb-logs-forwarder/pkg/config"
)

func main() {
	cfg, err := appConfig.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl := logger.New(cfg)

	handler, err := app.NewHandler(context.Background(), cfg, zl)
	if err != nil {
		zl.Fatal().Err(err).Msg("Failed to create handler")
	}

	lambda.Start(handler.Handle)
}
