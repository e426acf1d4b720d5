package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"ballotroom/internal/app/bootstrap"
)

// Worker process entrypoint.
// Runs the purge sweeper that reclaims completed meetings whose cascade
// delete did not finish in the report request.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("build worker: %v", err)
	}
	defer func() {
		_ = app.Close()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("run worker: %v", err)
	}
}
