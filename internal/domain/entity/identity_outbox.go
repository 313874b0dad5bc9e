package entity

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// IdentityOutbox records a pending identity provisioning for a user. It is
// written in the same transaction as the user.
type IdentityOutbox struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	EventID       uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"event_id"`
	UserID        uint         `gorm:"not null;index" json:"user_id"`
	Status        OutboxStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Attempts      int          `gorm:"not null;default:0" json:"attempts"`
	LastError     string       `gorm:"type:text" json:"last_error,omitempty"`
	ExternalID    *string      `gorm:"type:varchar(128)" json:"external_id,omitempty"`
	NextAttemptAt time.Time    `gorm:"not null;index" json:"next_attempt_at"`
	ProcessedAt   *time.Time   `json:"processed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (IdentityOutbox) TableName() string {
	return "identity_outbox"
}
