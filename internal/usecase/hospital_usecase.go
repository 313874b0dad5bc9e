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
	ErrHospitalNotFound = apperror.NotFound("Hospital")
	ErrHospitalExists   = apperror.Validation("Hospital already exists")
	ErrInvalidProvince  = apperror.Validation("Invalid province")
	ErrHospitalInUse    = apperror.Conflict("Hospital still has doctors, specialties or templates")
)

type HospitalUsecase interface {
	CreateHospital(ctx context.Context, req *dto.CreateHospitalRequest, current *entity.CurrentUser) (*dto.HospitalResponse, error)
	GetHospital(ctx context.Context, id uint) (*dto.HospitalResponse, error)
	GetHospitals(ctx context.Context, name string) (*dto.HospitalListResponse, error)
	UpdateHospital(ctx context.Context, id uint, req *dto.UpdateHospitalRequest, current *entity.CurrentUser) (*dto.HospitalResponse, error)
	DeleteHospital(ctx context.Context, id uint, current *entity.CurrentUser) error
}

type hospitalUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	hospitalRepo   repository.HospitalRepository
	userRepo       repository.UserRepository
	auditService   service.AuditService
	accountService service.AccountService
}

func NewHospitalUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	hospitalRepo repository.HospitalRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	accountService service.AccountService,
) HospitalUsecase {
	return &hospitalUsecase{
		db:             db,
		log:            log,
		hospitalRepo:   hospitalRepo,
		userRepo:       userRepo,
		auditService:   auditService,
		accountService: accountService,
	}
}

// CreateHospital stores the hospital and its location together. current may
// be nil: hospitals are created before their first admin exists.
func (u *hospitalUsecase) CreateHospital(ctx context.Context, req *dto.CreateHospitalRequest, current *entity.CurrentUser) (*dto.HospitalResponse, error) {
	province := entity.Province(req.Location.Province)
	if !province.IsValid() {
		return nil, ErrInvalidProvince
	}

	existing, err := u.hospitalRepo.FindByName(ctx, u.db, req.Name)
	if err != nil {
		u.log.Warnf("Failed to find hospital by name: %+v", err)
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, ErrHospitalExists
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hospital := &entity.Hospital{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		Location: &entity.Location{
			Address:  req.Location.Address,
			Province: province,
		},
	}

	if err := u.hospitalRepo.Create(ctx, tx, hospital); err != nil {
		if isDuplicateKeyError(err, "name") {
			return nil, ErrHospitalExists
		}
		u.log.Warnf("Failed to create hospital: %+v", err)
		return nil, apperror.Internal(err)
	}

	response := converter.HospitalToResponse(hospital)
	if err := u.auditService.LogCreate(ctx, tx, actorOf(current), entity.AuditActionHospitalCreate, "hospital", hospital.ID, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Internal(err)
	}

	return response, nil
}

func (u *hospitalUsecase) GetHospital(ctx context.Context, id uint) (*dto.HospitalResponse, error) {
	hospital, err := u.hospitalRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find hospital by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}
	return converter.HospitalToResponse(hospital), nil
}

func (u *hospitalUsecase) GetHospitals(ctx context.Context, name string) (*dto.HospitalListResponse, error) {
	hospitals, err := u.hospitalRepo.FindAll(ctx, u.db, name)
	if err != nil {
		u.log.Warnf("Failed to find hospitals: %+v", err)
		return nil, apperror.Internal(err)
	}
	return &dto.HospitalListResponse{
		Hospitals: converter.HospitalsToResponses(hospitals),
		Total:     len(hospitals),
	}, nil
}

func (u *hospitalUsecase) UpdateHospital(ctx context.Context, id uint, req *dto.UpdateHospitalRequest, current *entity.CurrentUser) (*dto.HospitalResponse, error) {
	if !isAdminOf(current, id) {
		return nil, ErrNotAllowed
	}

	var province entity.Province
	if req.Location != nil {
		province = entity.Province(req.Location.Province)
		if !province.IsValid() {
			return nil, ErrInvalidProvince
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hospital, err := u.hospitalRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find hospital by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}

	oldValue := converter.HospitalToResponse(hospital)

	if req.Name != nil {
		hospital.Name = *req.Name
	}
	if req.Description != nil {
		hospital.Description = *req.Description
	}
	if req.Schedule != nil {
		hospital.Schedule = *req.Schedule
	}
	if req.Location != nil {
		if hospital.Location == nil {
			hospital.Location = &entity.Location{ID: hospital.LocationID}
		}
		hospital.Location.Address = req.Location.Address
		hospital.Location.Province = province
	}
	now := u.db.NowFunc()
	hospital.UpdatedAt = &now

	if err := u.hospitalRepo.Update(ctx, tx, hospital); err != nil {
		if isDuplicateKeyError(err, "name") {
			return nil, ErrHospitalExists
		}
		u.log.Warnf("Failed to update hospital: %+v", err)
		return nil, apperror.Internal(err)
	}

	newValue := converter.HospitalToResponse(hospital)
	if err := u.auditService.LogUpdate(ctx, tx, &current.ID, entity.AuditActionHospitalUpdate, "hospital", hospital.ID, oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Internal(err)
	}

	return newValue, nil
}

// DeleteHospital removes the hospital with its location and its admin
// accounts. Doctors, specialties and templates must be removed first.
func (u *hospitalUsecase) DeleteHospital(ctx context.Context, id uint, current *entity.CurrentUser) error {
	if !isAdminOf(current, id) {
		return ErrNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hospital, err := u.hospitalRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find hospital by ID: %+v", err)
		return apperror.Internal(err)
	}
	if hospital == nil {
		return ErrHospitalNotFound
	}

	// Admin accounts belong to the hospital and go with it.
	role := entity.RoleAdmin
	admins, err := u.userRepo.FindAll(ctx, tx, entity.UserFilter{Role: &role, HospitalID: &hospital.ID})
	if err != nil {
		u.log.Warnf("Failed to find hospital admins: %+v", err)
		return apperror.Internal(err)
	}
	uids := []string{}
	for i := range admins {
		removed, err := u.accountService.Remove(ctx, tx, &admins[i])
		if err != nil {
			u.log.Warnf("Failed to delete hospital admin: %+v", err)
			return apperror.Internal(err)
		}
		uids = append(uids, removed...)
	}

	if err := u.hospitalRepo.Delete(ctx, tx, hospital); err != nil {
		if isForeignKeyError(err) {
			return ErrHospitalInUse
		}
		u.log.Warnf("Failed to delete hospital: %+v", err)
		return apperror.Internal(err)
	}

	if err := u.auditService.LogDelete(ctx, tx, &current.ID, entity.AuditActionHospitalDelete, "hospital", hospital.ID, converter.HospitalToResponse(hospital)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := u.accountService.Deprovision(ctx, uids); err != nil {
		return apperror.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return apperror.Internal(err)
	}

	return nil
}
