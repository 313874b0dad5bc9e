package repository

import (
	"context"
	"errors"
	"time"

	"hospicloud/internal/domain/entity"
	domainRepo "hospicloud/internal/domain/repository"

	"gorm.io/gorm"
)

type identityOutboxRepository struct{}

func NewIdentityOutboxRepository() domainRepo.IdentityOutboxRepository {
	return &identityOutboxRepository{}
}

func (r *identityOutboxRepository) Create(ctx context.Context, db *gorm.DB, event *entity.IdentityOutbox) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *identityOutboxRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.IdentityOutbox, error) {
	var event entity.IdentityOutbox
	err := db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *identityOutboxRepository) FindPendingByUserID(ctx context.Context, db *gorm.DB, userID uint) ([]entity.IdentityOutbox, error) {
	var events []entity.IdentityOutbox
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.OutboxStatusPending).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *identityOutboxRepository) FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]entity.IdentityOutbox, error) {
	var events []entity.IdentityOutbox
	err := db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", entity.OutboxStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Claim bumps the attempt counter only if it still holds the value the caller
// read, so concurrent workers never process the same attempt twice.
func (r *identityOutboxRepository) Claim(ctx context.Context, db *gorm.DB, event *entity.IdentityOutbox, leaseUntil time.Time) (bool, error) {
	result := db.WithContext(ctx).Model(&entity.IdentityOutbox{}).
		Where("id = ? AND status = ? AND attempts = ?", event.ID, entity.OutboxStatusPending, event.Attempts).
		Updates(map[string]interface{}{
			"attempts":        event.Attempts + 1,
			"next_attempt_at": leaseUntil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected != 1 {
		return false, nil
	}
	event.Attempts++
	event.NextAttemptAt = leaseUntil
	return true, nil
}

func (r *identityOutboxRepository) Update(ctx context.Context, db *gorm.DB, event *entity.IdentityOutbox) error {
	return db.WithContext(ctx).Save(event).Error
}
