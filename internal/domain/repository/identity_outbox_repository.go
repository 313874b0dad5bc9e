package repository

import (
	"context"
	"time"

	"hospicloud/internal/domain/entity"

	"gorm.io/gorm"
)

type IdentityOutboxRepository interface {
	Create(ctx context.Context, db *gorm.DB, event *entity.IdentityOutbox) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.IdentityOutbox, error)
	FindPendingByUserID(ctx context.Context, db *gorm.DB, userID uint) ([]entity.IdentityOutbox, error)
	FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]entity.IdentityOutbox, error)
	// Claim moves NextAttemptAt from the observed value to leaseUntil. It
	// reports false when another worker changed the row first.
	Claim(ctx context.Context, db *gorm.DB, event *entity.IdentityOutbox, leaseUntil time.Time) (bool, error)
	Update(ctx context.Context, db *gorm.DB, event *entity.IdentityOutbox) error
}
