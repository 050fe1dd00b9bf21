package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/api"
	"github.com/Helper-Yoon/sns-help-counter/internal/channeltalk"
	"github.com/Helper-Yoon/sns-help-counter/internal/classify"
	"github.com/Helper-Yoon/sns-help-counter/internal/config"
	"github.com/Helper-Yoon/sns-help-counter/internal/queue"
	"github.com/Helper-Yoon/sns-help-counter/internal/storage"
	"github.com/Helper-Yoon/sns-help-counter/internal/tracker"
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
	orchestrator := tracker.NewOrchestrator(client, classifier, recorder, statsRepo, &cfg.Sync)

	router := api.NewRouter(db, q, orchestrator, cfg)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
