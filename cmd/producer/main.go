package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/segmentio/kafka-go"

	"demo/interview/internal/gen"
	"demo/interview/internal/model"
)

type producerConfig struct {
	Brokers  []string      `env:"KAFKA_BROKERS"   envDefault:"localhost:9094" envSeparator:","`
	Topic    string        `env:"KAFKA_TOPIC"     envDefault:"orders"`
	Glob     string        `env:"DATA_GLOB"       envDefault:"data/*.json"`
	Count    int           `env:"GEN_COUNT"       envDefault:"1"`
	Interval time.Duration `env:"GEN_INTERVAL"    envDefault:"0s"`
}

func main() {
	gen.SeedOnce()

	var cfg producerConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}
	log.Printf("brokers=%v topic=%s glob=%s", cfg.Brokers, cfg.Topic, cfg.Glob)

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}

	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("close writer: %v", err)
		}
	}()

	paths, err := filepath.Glob(cfg.Glob)
	if err != nil {
		log.Fatalf("glob %s: %v", cfg.Glob, err)
	}

	// No files: generate GEN_COUNT orders.
	if len(paths) == 0 {
		for i := 0; i < cfg.Count; i++ {
			if _, err := gen.SendOrderMessage(context.Background(), w, gen.FakeOrderMessage(), "generated"); err != nil {
				log.Fatalf("produce: %v", err)
			}
			if cfg.Interval > 0 {
				time.Sleep(cfg.Interval)
			}
		}
		log.Printf("produced %d generated message(s)", cfg.Count)
		return
	}

	total := 0
	for _, p := range paths {
		n, err := produceFile(context.Background(), w, p)
		if err != nil {
			log.Printf("file %s: %v", p, err)
		}
		total += n
	}
	log.Printf("done: produced=%d from %d files", total, len(paths))
}

// produceFile sends one message or an array of messages read from path.
func produceFile(ctx context.Context, w *kafka.Writer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("close %s: %v", path, err)
		}
	}()
	b, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}

	source := filepath.Base(path)
	var one model.OrderMessage
	if err := json.Unmarshal(b, &one); err == nil && one.ID != "" {
		return gen.SendOrderMessage(ctx, w, one, source)
	}
	var many []model.OrderMessage
	if err := json.Unmarshal(b, &many); err == nil && len(many) > 0 {
		sum := 0
		for _, msg := range many {
			n, err := gen.SendOrderMessage(ctx, w, msg, source)
			if err != nil {
				log.Printf("produce: %v", err)
				continue
			}
			sum += n
		}
		return sum, nil
	}
	return 0, fmt.Errorf("invalid JSON in %s: must be object or array of objects", path)
}
