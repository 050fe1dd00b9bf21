package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Helper-Yoon/sns-help-counter/internal/channeltalk"
	"github.com/Helper-Yoon/sns-help-counter/internal/classify"
	"github.com/Helper-Yoon/sns-help-counter/internal/config"
	"github.com/Helper-Yoon/sns-help-counter/internal/queue"
	"github.com/Helper-Yoon/sns-help-counter/internal/storage"
	"github.com/Helper-Yoon/sns-help-counter/internal/tracker"
	"github.com/Helper-Yoon/sns-help-counter/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	q, err := queue.NewRedisQueue(&cfg.Redis, &cfg.Worker)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer q.Close()

	eventRepo := storage.NewHelpEventRepo(db)
	statsRepo := storage.NewStatsRepo(db)

	client := channeltalk.NewClient(&cfg.Channel)
	classifier := classify.New(cfg.Sync.Policy, cfg.Sync.Mode)
	recorder := tracker.NewRecorder(eventRepo, statsRepo, cfg.Sync.MaxHelpsPerDay, cfg.Sync.MaxCharsPerMsg, cfg.Sync.NameOverrides)
	processor := tracker.NewProcessor(client, classifier, recorder)
	orchestrator := tracker.NewOrchestrator(client, classifier, recorder, statsRepo, &cfg.Sync)

	scheduler, err := worker.NewScheduler(orchestrator, &cfg.Sync)
	if err != nil {
		log.Fatalf("Failed to build scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	w := worker.New(q, processor, cfg.Worker.Concurrency, cfg.Worker.BatchSize)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down worker...")
		cancel()
	}()

	log.Println("Worker starting...")
	if err := w.Start(ctx); err != nil {
		log.Fatalf("Worker error: %v", err)
	}

	log.Println("Worker stopped")
}
