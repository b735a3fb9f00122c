package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"demo/interview/internal/config"
	"demo/interview/internal/ingest"
	"demo/interview/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	app, err := server.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	if cfg.Ingest {
		log.Printf("Kafka brokers = %v topic=%s group=%s", cfg.KafkaBrokers, cfg.OrdersTopic, cfg.ConsumerGroup)
		reader := ingest.NewKafkaReader(cfg.KafkaBrokers, cfg.OrdersTopic, cfg.ConsumerGroup)
		defer func() {
			if err := reader.Close(); err != nil {
				log.Printf("close reader: %v", err)
			}
		}()
		go ingest.NewConsumer(reader, app.Service).Run(ctx)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Router}
	go func() {
		log.Printf("http: listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	shCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	log.Println("bye")
}
