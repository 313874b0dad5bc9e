package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"hospicloud/config"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/domain/repository"
	"hospicloud/internal/infrastructure/identity"
	"hospicloud/internal/infrastructure/mail"
	"hospicloud/pkg/metrics"
	"hospicloud/pkg/password"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrUserGone = errors.New("user no longer exists")

// IdentityProvisioner creates the external identity of users recorded in the
// identity outbox. The first attempt runs right after the user is committed;
// failed attempts are retried by a background loop.
type IdentityProvisioner interface {
	// NewEvent builds the outbox row to insert alongside a new user.
	NewEvent(userID uint) *entity.IdentityOutbox
	// Provision runs one attempt for event using plainPassword, which must
	// match the hash stored on the user.
	Provision(ctx context.Context, event *entity.IdentityOutbox, plainPassword string) error
	// ProcessDue retries every pending event whose next attempt is due.
	ProcessDue(ctx context.Context) (int, error)
	Start(ctx context.Context)
	Stop()
}

type identityProvisioner struct {
	db         *gorm.DB
	log        *logrus.Logger
	cfg        config.OutboxConfig
	userRepo   repository.UserRepository
	outboxRepo repository.IdentityOutboxRepository
	provider   identity.Provider
	hasher     password.Hasher
	mailer     mail.Mailer
	metrics    *metrics.Metrics

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewIdentityProvisioner(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.OutboxConfig,
	userRepo repository.UserRepository,
	outboxRepo repository.IdentityOutboxRepository,
	provider identity.Provider,
	hasher password.Hasher,
	mailer mail.Mailer,
	m *metrics.Metrics,
) IdentityProvisioner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &identityProvisioner{
		db:         db,
		log:        log,
		cfg:        cfg,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		provider:   provider,
		hasher:     hasher,
		mailer:     mailer,
		metrics:    m,
		stop:       make(chan struct{}),
	}
}

// lease keeps the background loop away from an event while an attempt runs.
func (p *identityProvisioner) lease() time.Duration {
	return 2 * p.cfg.PollInterval
}

func (p *identityProvisioner) NewEvent(userID uint) *entity.IdentityOutbox {
	return &entity.IdentityOutbox{
		EventID:       uuid.New(),
		UserID:        userID,
		Status:        entity.OutboxStatusPending,
		NextAttemptAt: p.db.NowFunc().Add(p.lease()),
	}
}

func (p *identityProvisioner) Provision(ctx context.Context, event *entity.IdentityOutbox, plainPassword string) error {
	now := p.db.NowFunc()
	claimed, err := p.outboxRepo.Claim(ctx, p.db, event, now.Add(p.lease()))
	if err != nil {
		p.log.Warnf("Failed to claim identity outbox event: %+v", err)
		return err
	}
	if !claimed {
		return nil
	}

	if err := p.attempt(ctx, event, plainPassword); err != nil {
		p.fail(ctx, event, err)
		return err
	}
	return nil
}

func (p *identityProvisioner) ProcessDue(ctx context.Context) (int, error) {
	events, err := p.outboxRepo.FindDue(ctx, p.db, p.db.NowFunc(), p.cfg.BatchSize)
	if err != nil {
		p.log.Warnf("Failed to find due identity outbox events: %+v", err)
		return 0, err
	}
	if p.metrics != nil {
		p.metrics.IdentityPending.Set(float64(len(events)))
	}

	processed := 0
	for i := range events {
		// Retries never know the original credential, so a new one is issued.
		if err := p.Provision(ctx, &events[i], ""); err == nil {
			processed++
		}
	}
	return processed, nil
}

func (p *identityProvisioner) attempt(ctx context.Context, event *entity.IdentityOutbox, plainPassword string) error {
	// A previous attempt may have created the identity before failing. It is
	// removed even when the user is gone, so it cannot hold on to the email.
	if event.ExternalID != nil {
		if err := p.provider.DeprovisionIdentity(ctx, *event.ExternalID); err != nil {
			return err
		}
		event.ExternalID = nil
	}

	user, err := p.userRepo.FindByID(ctx, p.db, event.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserGone
	}

	newHash := ""
	if plainPassword == "" {
		plainPassword, err = password.Generate(password.GeneratedLength)
		if err != nil {
			return err
		}
		if newHash, err = p.hasher.Hash(plainPassword); err != nil {
			return err
		}
	}

	uid, err := p.provider.ProvisionIdentity(ctx, user.Email, plainPassword, user.FullName())
	if err != nil {
		return err
	}
	event.ExternalID = &uid

	claims := identity.Claims{UserID: user.ID, Role: user.UserRole, HospitalID: user.HospitalID()}
	if err := p.provider.SetClaims(ctx, uid, claims); err != nil {
		return err
	}

	tx := p.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if newHash != "" {
		if err := tx.Model(&entity.User{}).Where("id = ?", user.ID).Update("password", newHash).Error; err != nil {
			return err
		}
	}
	if err := p.userRepo.SetExternalID(ctx, tx, user.ID, &uid); err != nil {
		return err
	}

	processedAt := p.db.NowFunc()
	event.Status = entity.OutboxStatusProcessed
	event.ProcessedAt = &processedAt
	event.LastError = ""
	if err := p.outboxRepo.Update(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	if p.metrics != nil {
		p.metrics.IdentityProvisioned.Inc()
	}

	if err := p.mailer.SendCredentials(ctx, user.Email, user.FullName(), plainPassword); err != nil {
		p.log.Warnf("Failed to deliver credentials for user %d: %+v", user.ID, err)
	}

	return nil
}

// fail records a failed attempt and schedules the next one, or gives up once
// the attempt budget is spent.
func (p *identityProvisioner) fail(ctx context.Context, event *entity.IdentityOutbox, cause error) {
	p.log.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"user_id":  event.UserID,
		"attempt":  event.Attempts,
	}).Warnf("Failed to provision identity: %+v", cause)

	if p.metrics != nil {
		p.metrics.IdentityFailed.Inc()
	}

	event.LastError = cause.Error()
	if event.Attempts >= p.cfg.MaxAttempts || errors.Is(cause, ErrUserGone) {
		event.Status = entity.OutboxStatusFailed
	} else {
		event.NextAttemptAt = p.db.NowFunc().Add(time.Duration(event.Attempts) * p.cfg.PollInterval)
	}

	if err := p.outboxRepo.Update(ctx, p.db, event); err != nil {
		p.log.Warnf("Failed to update identity outbox event: %+v", err)
	}
}

func (p *identityProvisioner) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.cfg.PollInterval)
		defer ticker.Stop()

		p.log.WithField("interval", p.cfg.PollInterval.String()).Info("Identity provisioner started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				if _, err := p.ProcessDue(ctx); err != nil {
					p.log.Warnf("Identity provisioner poll failed: %+v", err)
				}
			}
		}
	}()
}

func (p *identityProvisioner) Stop() {
	close(p.stop)
	p.wg.Wait()
	p.log.Info("Identity provisioner stopped")
}
