// Command alb-logs-forwarder replays an S3 event JSON file through the forwarder against real AWS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/shiimaxx/alb-logs-forwarder/internal/app"
	"github.com/shiimaxx/alb-logs-forwarder/internal/logger"
	appConfig "github.com/shiimaxx/alb-logs-forwarder/pkg/config"
)

func main() {
	eventPath := flag.String("event", "", "path to an S3 event notification JSON file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the environment is read")
	flag.Parse()

	if *eventPath == "" {
		log.Fatal("-event is required")
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load %s: %v", *envFile, err)
	}

	event, err := readEvent(*eventPath)
	if err != nil {
		log.Fatalf("read event: %v", err)
	}

	cfg, err := appConfig.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	handler, err := app.NewHandler(ctx, cfg, logger.New(cfg))
	if err != nil {
		log.Fatalf("create handler: %v", err)
	}

	resp, err := handler.Handle(ctx, event)
	if err != nil {
		log.Fatalf("handle event: %v", err)
	}

	fmt.Printf("%d %s\n", resp.StatusCode, resp.Body)
	if resp.StatusCode != 200 {
		os.Exit(1)
	}
}

func readEvent(path string) (events.S3Event, error) {
	var event events.S3Event

	data, err := os.ReadFile(path)
	if err != nil {
		return event, err
	}

	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(event.Records) == 0 {
		return event, fmt.Errorf("%s contains no Records", path)
	}

	return event, nil
}
