package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marbabud/domownik/internal/blobstore"
	"github.com/marbabud/domownik/internal/config"
	"github.com/marbabud/domownik/internal/database"
	"github.com/marbabud/domownik/internal/handlers"
	"github.com/marbabud/domownik/internal/models"
	"github.com/marbabud/domownik/internal/notify"
	"github.com/marbabud/domownik/internal/protocols"
	"github.com/marbabud/domownik/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAccount{},
		&models.StoredDocument{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Open the image blob store
	blobs, err := blobstore.Open(cfg.BlobDir)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// 5. Workflow repository over the document store
	repo := protocols.NewRepository(store.NewGormStore(db.DB))

	// 6. Live notification hub
	hub := notify.NewHub()
	go hub.Run()

	// 7. Set up HTTP router
	router := handlers.NewRouter(db, cfg, repo, blobs, hub)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 DOMOWNIK server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("🛑 Closing blob store...")
	if err := blobs.Close(); err != nil {
		log.Printf("Blob store close error: %v", err)
	}

	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
