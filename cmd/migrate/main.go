package main

import (
	"log"

	"idea-contract-be/internal/config"
	"idea-contract-be/internal/model"
	"idea-contract-be/pkg/database"
)

// reviewQueueView lists catalog entries still awaiting a human decision.
const reviewQueueView = `CREATE OR REPLACE VIEW contract_review_queue AS
SELECT session_id, title, department, status, ai_score, ai_risk_level, created_at
FROM contracts
WHERE deleted_at IS NULL AND status IN ('submitted', 'completed', 'under_review')
ORDER BY created_at DESC`

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	db, err := database.Open(cfg.Database.Connection, database.Options{Production: cfg.IsProduction()})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// gen_random_uuid() for contract ids
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		log.Printf("pgcrypto unavailable, continuing: %v", err)
	}

	if err := db.AutoMigrate(&model.Contract{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	if err := db.Exec(reviewQueueView).Error; err != nil {
		log.Fatalf("Creating contract_review_queue failed: %v", err)
	}

	log.Println("Contract catalog migrated")
}
