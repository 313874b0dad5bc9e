package usecase

import (
	"context"

	"hospicloud/internal/converter"
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/domain/repository"
	"hospicloud/internal/service"
	"hospicloud/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSpecialtyNotFound = apperror.NotFound("Specialty")
	ErrSpecialtyExists   = apperror.Conflict("Specialty exists in the current hospital")
	ErrSpecialtyInUse    = apperror.Conflict("Specialty is used by a template")
)

type SpecialtyUsecase interface {
	CreateSpecialty(ctx context.Context, req *dto.CreateSpecialtyRequest, current *entity.CurrentUser) (*dto.SpecialtyResponse, error)
	GetSpecialty(ctx context.Context, id uint) (*dto.SpecialtyResponse, error)
	GetSpecialties(ctx context.Context, hospitalID *uint) (*dto.SpecialtyListResponse, error)
	UpdateSpecialty(ctx context.Context, id uint, req *dto.UpdateSpecialtyRequest, current *entity.CurrentUser) (*dto.SpecialtyResponse, error)
	DeleteSpecialty(ctx context.Context, id uint, current *entity.CurrentUser) error
}

type specialtyUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	specialtyRepo repository.SpecialtyRepository
	hospitalRepo  repository.HospitalRepository
	auditService  service.AuditService
}

func NewSpecialtyUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	specialtyRepo repository.SpecialtyRepository,
	hospitalRepo repository.HospitalRepository,
	auditService service.AuditService,
) SpecialtyUsecase {
	return &specialtyUsecase{
		db:            db,
		log:           log,
		specialtyRepo: specialtyRepo,
		hospitalRepo:  hospitalRepo,
		auditService:  auditService,
	}
}

func (u *specialtyUsecase) CreateSpecialty(ctx context.Context, req *dto.CreateSpecialtyRequest, current *entity.CurrentUser) (*dto.SpecialtyResponse, error) {
	if !isAdminOf(current, req.HospitalID) {
		return nil, ErrNotAllowed
	}

	existing, err := u.specialtyRepo.FindByNameAndHospital(ctx, u.db, req.Name, req.HospitalID)
	if err != nil {
		u.log.Warnf("Failed to find specialty: %+v", err)
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, ErrSpecialtyExists
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hospital, err := u.hospitalRepo.FindByID(ctx, tx, req.HospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}

	specialty := &entity.Specialty{
		Name:       req.Name,
		HospitalID: req.HospitalID,
	}
	if err := u.specialtyRepo.Create(ctx, tx, specialty); err != nil {
		if isDuplicateKeyError(err, "specialty_name_hospital") {
			return nil, ErrSpecialtyExists
		}
		u.log.Warnf("Failed to create specialty: %+v", err)
		return nil, apperror.Internal(err)
	}

	response := converter.SpecialtyToResponse(specialty)
	if err := u.auditService.LogCreate(ctx, tx, &current.ID, entity.AuditActionSpecialtyCreate, "specialty", specialty.ID, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Internal(err)
	}

	return response, nil
}

func (u *specialtyUsecase) GetSpecialty(ctx context.Context, id uint) (*dto.SpecialtyResponse, error) {
	specialty, err := u.specialtyRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find specialty by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if specialty == nil {
		return nil, ErrSpecialtyNotFound
	}
	return converter.SpecialtyToResponse(specialty), nil
}

func (u *specialtyUsecase) GetSpecialties(ctx context.Context, hospitalID *uint) (*dto.SpecialtyListResponse, error) {
	specialties, err := u.specialtyRepo.FindAll(ctx, u.db, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find specialties: %+v", err)
		return nil, apperror.Internal(err)
	}
	return &dto.SpecialtyListResponse{
		Specialties: converter.SpecialtiesToResponses(specialties),
		Total:       len(specialties),
	}, nil
}

func (u *specialtyUsecase) UpdateSpecialty(ctx context.Context, id uint, req *dto.UpdateSpecialtyRequest, current *entity.CurrentUser) (*dto.SpecialtyResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	specialty, err := u.specialtyRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find specialty by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if specialty == nil {
		return nil, ErrSpecialtyNotFound
	}
	if !isAdminOf(current, specialty.HospitalID) {
		return nil, ErrNotAllowed
	}

	oldValue := converter.SpecialtyToResponse(specialty)
	if req.Name == nil || *req.Name == specialty.Name {
		return oldValue, nil
	}
	specialty.Name = *req.Name

	if err := u.specialtyRepo.Update(ctx, tx, specialty); err != nil {
		if isDuplicateKeyError(err, "specialty_name_hospital") {
			return nil, ErrSpecialtyExists
		}
		u.log.Warnf("Failed to update specialty: %+v", err)
		return nil, apperror.Internal(err)
	}

	newValue := converter.SpecialtyToResponse(specialty)
	if err := u.auditService.LogUpdate(ctx, tx, &current.ID, entity.AuditActionSpecialtyUpdate, "specialty", specialty.ID, oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Internal(err)
	}

	return newValue, nil
}

func (u *specialtyUsecase) DeleteSpecialty(ctx context.Context, id uint, current *entity.CurrentUser) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	specialty, err := u.specialtyRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find specialty by ID: %+v", err)
		return apperror.Internal(err)
	}
	if specialty == nil {
		return ErrSpecialtyNotFound
	}
	if !isAdminOf(current, specialty.HospitalID) {
		return ErrNotAllowed
	}

	if err := u.specialtyRepo.Delete(ctx, tx, specialty.ID); err != nil {
		if isForeignKeyError(err) {
			return ErrSpecialtyInUse
		}
		u.log.Warnf("Failed to delete specialty: %+v", err)
		return apperror.Internal(err)
	}

	if err := u.auditService.LogDelete(ctx, tx, &current.ID, entity.AuditActionSpecialtyDelete, "specialty", specialty.ID, converter.SpecialtyToResponse(specialty)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return apperror.Internal(err)
	}

	return nil
}
