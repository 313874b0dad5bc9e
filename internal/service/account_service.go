package service

import (
	"context"

	"hospicloud/internal/domain/entity"
	"hospicloud/internal/domain/repository"
	"hospicloud/internal/infrastructure/identity"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AccountService removes user accounts together with every identity
// provisioned for them.
type AccountService interface {
	// Remove deletes the user and its sub-record inside tx, fails its pending
	// identity provisioning and returns the identities that must go with it.
	Remove(ctx context.Context, tx *gorm.DB, user *entity.User) ([]string, error)
	// Deprovision removes identities. Callers run it before committing the
	// transaction Remove used, so a failure leaves the account intact.
	Deprovision(ctx context.Context, uids []string) error
}

type accountService struct {
	log         *logrus.Logger
	userRepo    repository.UserRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	adminRepo   repository.AdminRepository
	outboxRepo  repository.IdentityOutboxRepository
	provider    identity.Provider
	// bypass skips deprovisioning.
	bypass bool
}

func NewAccountService(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	adminRepo repository.AdminRepository,
	outboxRepo repository.IdentityOutboxRepository,
	provider identity.Provider,
	bypass bool,
) AccountService {
	return &accountService{
		log:         log,
		userRepo:    userRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		adminRepo:   adminRepo,
		outboxRepo:  outboxRepo,
		provider:    provider,
		bypass:      bypass,
	}
}

func (s *accountService) Remove(ctx context.Context, tx *gorm.DB, user *entity.User) ([]string, error) {
	var err error
	switch user.UserRole {
	case entity.RolePatient:
		err = s.patientRepo.DeleteByUserID(ctx, tx, user.ID)
	case entity.RoleDoctor:
		err = s.doctorRepo.DeleteByUserID(ctx, tx, user.ID)
	case entity.RoleAdmin:
		err = s.adminRepo.DeleteByUserID(ctx, tx, user.ID)
	}
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Delete(ctx, tx, user.ID); err != nil {
		return nil, err
	}

	uids := []string{}
	if user.ExternalID != nil {
		uids = append(uids, *user.ExternalID)
	}

	// A failed attempt may have left an identity that never reached the user.
	events, err := s.outboxRepo.FindPendingByUserID(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range events {
		event := &events[i]
		if event.ExternalID != nil && (user.ExternalID == nil || *event.ExternalID != *user.ExternalID) {
			uids = append(uids, *event.ExternalID)
		}
		event.Status = entity.OutboxStatusFailed
		event.LastError = "user deleted"
		if err := s.outboxRepo.Update(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	return uids, nil
}

func (s *accountService) Deprovision(ctx context.Context, uids []string) error {
	if s.bypass {
		return nil
	}
	for _, uid := range uids {
		if err := s.provider.DeprovisionIdentity(ctx, uid); err != nil {
			s.log.Warnf("Failed to deprovision identity %s: %+v", uid, err)
			return err
		}
	}
	return nil
}
