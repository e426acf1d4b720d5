package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"ballotroom/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Serve HTTP until a termination signal triggers a graceful drain.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("build api: %v", err)
	}
	defer func() {
		_ = app.Close()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("run api: %v", err)
	}
}
