package usecase

import (
	"bytes"
	"context"
	"encoding/json"

	"hospicloud/internal/converter"
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/domain/repository"
	"hospicloud/internal/service"
	"hospicloud/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound = apperror.NotFound("Template")
	ErrTemplateExists   = apperror.Conflict("A template already exists for this specialty in this hospital")
	ErrTemplateInUse    = apperror.Conflict("Template has checkups and cannot be deleted")
	ErrDoctorNotFound   = apperror.NotFound("Doctor")
)

type TemplateUsecase interface {
	CreateTemplate(ctx context.Context, req *dto.CreateTemplateRequest, current *entity.CurrentUser) (*dto.TemplateResponse, error)
	GetTemplate(ctx context.Context, id uint) (*dto.TemplateResponse, error)
	GetTemplates(ctx context.Context, hospitalID *uint) (*dto.TemplateListResponse, error)
	GetTemplatesByDoctorID(ctx context.Context, doctorID uint) (*dto.TemplateListResponse, error)
	UpdateTemplate(ctx context.Context, id uint, req *dto.UpdateTemplateRequest, current *entity.CurrentUser) (*dto.TemplateResponse, error)
	DeleteTemplate(ctx context.Context, id uint, current *entity.CurrentUser) error
}

type templateUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	templateRepo  repository.TemplateRepository
	specialtyRepo repository.SpecialtyRepository
	doctorRepo    repository.DoctorRepository
	auditService  service.AuditService
}

func NewTemplateUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	templateRepo repository.TemplateRepository,
	specialtyRepo repository.SpecialtyRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
) TemplateUsecase {
	return &templateUsecase{
		db:            db,
		log:           log,
		templateRepo:  templateRepo,
		specialtyRepo: specialtyRepo,
		doctorRepo:    doctorRepo,
		auditService:  auditService,
	}
}

// normalizeHeaders accepts the header schema either as a JSON object or as a
// JSON string holding that object.
func normalizeHeaders(raw json.RawMessage) []byte {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return []byte(encoded)
	}
	return raw
}

// headersGiven reports whether an update carries a header schema. An explicit
// null counts as absent.
func headersGiven(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func (u *templateUsecase) CreateTemplate(ctx context.Context, req *dto.CreateTemplateRequest, current *entity.CurrentUser) (*dto.TemplateResponse, error) {
	if !isAdminOf(current, req.HospitalID) {
		return nil, ErrNotAllowed
	}

	headers := normalizeHeaders(req.Headers)
	_, counts, err := service.ClassifyHeaders(headers)
	if err != nil {
		return nil, err
	}

	existing, err := u.templateRepo.FindBySpecialtyAndHospital(ctx, u.db, req.SpecialtyID, req.HospitalID)
	if err != nil {
		u.log.Warnf("Failed to find template: %+v", err)
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, ErrTemplateExists
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	specialty, err := u.specialtyRepo.FindByID(ctx, tx, req.SpecialtyID)
	if err != nil {
		u.log.Warnf("Failed to find specialty by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if specialty == nil || specialty.HospitalID != req.HospitalID {
		return nil, ErrSpecialtyNotFound
	}

	template := &entity.Template{
		Title:              req.Title,
		SpecialtyID:        req.SpecialtyID,
		HospitalID:         req.HospitalID,
		Headers:            datatypes.JSON(headers),
		NumericFields:      counts.Numeric,
		AlphanumericFields: counts.Alphanumeric,
	}

	if err := u.templateRepo.Create(ctx, tx, template); err != nil {
		if isDuplicateKeyError(err, "template_specialty_hospital") {
			return nil, ErrTemplateExists
		}
		u.log.Warnf("Failed to create template: %+v", err)
		return nil, apperror.Internal(err)
	}
	template.Specialty = specialty

	response := converter.TemplateToResponse(template)
	if err := u.auditService.LogCreate(ctx, tx, &current.ID, entity.AuditActionTemplateCreate, "template", template.ID, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		if isDuplicateKeyError(err, "template_specialty_hospital") {
			return nil, ErrTemplateExists
		}
		return nil, apperror.Internal(err)
	}

	return response, nil
}

func (u *templateUsecase) GetTemplate(ctx context.Context, id uint) (*dto.TemplateResponse, error) {
	template, err := u.templateRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find template by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return converter.TemplateToResponse(template), nil
}

func (u *templateUsecase) GetTemplates(ctx context.Context, hospitalID *uint) (*dto.TemplateListResponse, error) {
	templates, err := u.templateRepo.FindAll(ctx, u.db, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find templates: %+v", err)
		return nil, apperror.Internal(err)
	}
	return &dto.TemplateListResponse{
		Templates: converter.TemplatesToResponses(templates),
		Total:     len(templates),
	}, nil
}

// GetTemplatesByDoctorID returns the checkup forms of every specialty the
// doctor practices.
func (u *templateUsecase) GetTemplatesByDoctorID(ctx context.Context, doctorID uint) (*dto.TemplateListResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	specialties, err := u.specialtyRepo.FindByDoctorID(ctx, u.db, doctor.ID)
	if err != nil {
		u.log.Warnf("Failed to find doctor specialties: %+v", err)
		return nil, apperror.Internal(err)
	}

	specialtyIDs := make([]uint, len(specialties))
	for i := range specialties {
		specialtyIDs[i] = specialties[i].ID
	}

	templates, err := u.templateRepo.FindBySpecialtyIDs(ctx, u.db, specialtyIDs)
	if err != nil {
		u.log.Warnf("Failed to find templates by specialties: %+v", err)
		return nil, apperror.Internal(err)
	}

	return &dto.TemplateListResponse{
		Templates: converter.TemplatesToResponses(templates),
		Total:     len(templates),
	}, nil
}

func (u *templateUsecase) UpdateTemplate(ctx context.Context, id uint, req *dto.UpdateTemplateRequest, current *entity.CurrentUser) (*dto.TemplateResponse, error) {
	var (
		headers []byte
		counts  service.FieldCounts
	)
	if headersGiven(req.Headers) {
		headers = normalizeHeaders(req.Headers)
		var err error
		if _, counts, err = service.ClassifyHeaders(headers); err != nil {
			return nil, err
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	template, err := u.templateRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find template by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if !isAdminOf(current, template.HospitalID) {
		return nil, ErrNotAllowed
	}

	oldValue := converter.TemplateToResponse(template)

	if req.Title != nil {
		template.Title = *req.Title
	}
	if headers != nil {
		template.Headers = datatypes.JSON(headers)
		template.NumericFields = counts.Numeric
		template.AlphanumericFields = counts.Alphanumeric
	}
	now := u.db.NowFunc()
	template.UpdatedAt = &now

	if err := u.templateRepo.Update(ctx, tx, template); err != nil {
		u.log.Warnf("Failed to update template: %+v", err)
		return nil, apperror.Internal(err)
	}

	newValue := converter.TemplateToResponse(template)
	if err := u.auditService.LogUpdate(ctx, tx, &current.ID, entity.AuditActionTemplateUpdate, "template", template.ID, oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Internal(err)
	}

	return newValue, nil
}

func (u *templateUsecase) DeleteTemplate(ctx context.Context, id uint, current *entity.CurrentUser) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	template, err := u.templateRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find template by ID: %+v", err)
		return apperror.Internal(err)
	}
	if template == nil {
		return ErrTemplateNotFound
	}
	if !isAdminOf(current, template.HospitalID) {
		return ErrNotAllowed
	}

	if err := u.templateRepo.Delete(ctx, tx, template.ID); err != nil {
		if isForeignKeyError(err) {
			return ErrTemplateInUse
		}
		u.log.Warnf("Failed to delete template: %+v", err)
		return apperror.Internal(err)
	}

	if err := u.auditService.LogDelete(ctx, tx, &current.ID, entity.AuditActionTemplateDelete, "template", template.ID, converter.TemplateToResponse(template)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return apperror.Internal(err)
	}

	return nil
}
