package specification

import "gorm.io/gorm"

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// Unscored matches contracts that have not received an AI score yet.
type Unscored struct{}

func (s Unscored) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ai_score IS NULL")
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
