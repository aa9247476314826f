package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"idea-contract-be/internal/bootstrap"
	"idea-contract-be/internal/config"
	"idea-contract-be/internal/server"
	"idea-contract-be/internal/tracer"
	"idea-contract-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// no-op unless OTEL_ENABLED=true
	shutdownTracer, err := tracer.Init(ctx, cfg.App)
	if err != nil {
		log.Printf("Tracing disabled: %v", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	// the contract catalog is disabled without a database
	var db *gorm.DB
	if cfg.Database.Connection != "" {
		db, err = database.Open(cfg.Database.Connection, database.Options{
			Production:      cfg.IsProduction(),
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SlowQuery:       cfg.Database.SlowQuery,
		})
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
	}

	container, err := bootstrap.NewContainer(ctx, db, cfg)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()

	go container.WebSocketHub.Run(ctx)

	if err := container.ConsumerService.Consume(ctx); err != nil {
		container.Logger.Error("Main", "Scoring consumer failed to start", map[string]interface{}{"error": err.Error()})
	}
	if container.NotificationService != nil {
		go container.NotificationService.Start()
	}

	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		container.Logger.Error("Main", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
