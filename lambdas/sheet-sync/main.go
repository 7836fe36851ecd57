package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"axiapac.com/attendance/attendance/app"
	"axiapac.com/attendance/config"
	"axiapac.com/attendance/infrastructure/devops"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
)

var (
	mu      sync.Mutex
	handler *Handler
)

func parameterStore(ctx context.Context) (config.ParameterReader, error) {
	return devops.NewParameterStore(ctx)
}

// getHandler builds the app on first use and keeps it for the lifetime of the
// container. A failed build is retried on the next invocation.
func getHandler(ctx context.Context) (*Handler, error) {
	mu.Lock()
	defer mu.Unlock()
	if handler != nil {
		return handler, nil
	}

	cfg, err := config.Load(ctx, parameterStore)
	if err != nil {
		return nil, err
	}
	key, err := cfg.JWTKey()
	if err != nil {
		return nil, err
	}
	a, err := app.Build(ctx, cfg, log.New(os.Stdout, "", 0))
	if err != nil {
		return nil, err
	}

	fmt.Printf("[INFO] Syncing %s (backend %s, store %s)\n", cfg.Source(), cfg.SheetBackend, cfg.StoreDriver)
	handler = &Handler{Inbound: a.Reconciler, Outbound: a.Exporter, JWTSecret: key}
	return handler, nil
}

func HandleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	h, err := getHandler(ctx)
	if err != nil {
		fmt.Printf("[ERROR] failed to initialise: %v\n", err)
		return FailedInit(event, err)
	}
	return h.HandleEvent(ctx, event)
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
		return
	}

	_ = godotenv.Load()

	event := json.RawMessage(`{"direction":"inbound"}`)
	if len(os.Args) > 1 {
		event = json.RawMessage(os.Args[1])
	}
	results, err := HandleRequest(context.Background(), event)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(results, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
}
