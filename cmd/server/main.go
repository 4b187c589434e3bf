// Package main is the entry point for the Resume Optimizer API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/config"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/database"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/handlers"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/router"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/analysis"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/storage"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/worker"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 Resume Optimizer API %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, workers=%d, gin_mode=%s, scorer=%s",
		cfg.Port, cfg.WorkerCount, cfg.GinMode, cfg.AnalysisScorer)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database connected")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Step 3: Create Services
	scorer, err := analysis.New(analysis.Config{
		Kind:        cfg.AnalysisScorer,
		SampleDelay: cfg.AnalysisDelay,
		APIKey:      cfg.OpenRouterAPIKey,
		Model:       cfg.OpenRouterModel,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create analysis scorer: %v", err)
	}
	log.Printf("✅ Analysis scorer: %s", scorer.Name())

	files, err := storage.New(cfg.StorageDir)
	if err != nil {
		log.Fatalf("❌ Failed to prepare storage: %v", err)
	}
	log.Printf("✅ Uploads stored under %s", cfg.StorageDir)

	// Step 4: Create and Start Worker Pool
	wp := worker.NewPool(cfg.WorkerCount, cfg.JobQueueSize)
	wp.Start()

	sessions := session.NewManager(wp, session.Options{
		ExtractionTimeout: cfg.ExtractionTimeout,
		TTL:               cfg.SessionTTL,
	})
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	sessions.StartCleanup(cleanupCtx, time.Minute)

	// Step 5: Setup HTTP Router
	h := &handlers.Handler{
		DB:                db,
		Worker:            wp,
		Sessions:          sessions,
		Scorer:            scorer,
		Storage:           files,
		JWTSecret:         cfg.JWTSecret,
		MaxUploadBytes:    cfg.MaxUploadBytes(),
		ExtractionTimeout: cfg.ExtractionTimeout,
		Version:           Version,
	}
	r := router.Setup(h, db, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.DefaultRateLimit,
	})

	// Step 6: Start the HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second, // large PDF uploads
		WriteTimeout: 90 * time.Second, // synchronous extraction and LLM analysis
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)
		log.Printf("📚 API docs: http://localhost:%s/api/docs", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 7: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	// Stopping the pool cancels in-flight extractions.
	stopCleanup()
	wp.Stop()

	log.Println("👋 Server stopped. Goodbye!")
}
