// Command admin manages user profiles from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"demo/interview/internal/admin"
	"demo/interview/internal/config"
	"demo/interview/internal/server"
)

func main() {
	cmd, err := admin.ParseArgs(os.Args[1:])
	if err != nil {
		exitf("Error: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		exitf("Error: %v", err)
	}
	// The admin tool never consumes or publishes.
	cfg.Ingest = false
	cfg.EventSink = config.SinkNone

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg)
	if err != nil {
		exitf("Error: %v", err)
	}
	defer app.Close()

	if err := admin.Run(ctx, app.Service, cmd, os.Stdout); err != nil {
		app.Close()
		exitf("Error: %v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
