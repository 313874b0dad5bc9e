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
	ErrCheckupNotFound = apperror.NotFound("Checkup")
	ErrPatientNotFound = apperror.NotFound("Patient")
)

type CheckupUsecase interface {
	CreateCheckup(ctx context.Context, req *dto.CreateCheckupRequest, current *entity.CurrentUser) (*dto.CheckupResponse, error)
	GetCheckup(ctx context.Context, id uint, current *entity.CurrentUser) (*dto.CheckupResponse, error)
	GetCheckupsByDoctorID(ctx context.Context, doctorID uint, current *entity.CurrentUser) (*dto.CheckupListResponse, error)
	GetCheckupsByPatientID(ctx context.Context, patientID uint, current *entity.CurrentUser) (*dto.CheckupListResponse, error)
	DeleteCheckup(ctx context.Context, id uint, current *entity.CurrentUser) error
}

type checkupUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	checkupRepo  repository.CheckupRepository
	templateRepo repository.TemplateRepository
	doctorRepo   repository.DoctorRepository
	patientRepo  repository.PatientRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
}

func NewCheckupUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	checkupRepo repository.CheckupRepository,
	templateRepo repository.TemplateRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) CheckupUsecase {
	return &checkupUsecase{
		db:           db,
		log:          log,
		checkupRepo:  checkupRepo,
		templateRepo: templateRepo,
		doctorRepo:   doctorRepo,
		patientRepo:  patientRepo,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

// CreateCheckup records a filled template. Only doctors create checkups, and
// only with templates of their own hospital.
func (u *checkupUsecase) CreateCheckup(ctx context.Context, req *dto.CreateCheckupRequest, current *entity.CurrentUser) (*dto.CheckupResponse, error) {
	if current == nil || current.Role != entity.RoleDoctor {
		return nil, ErrNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByUserID(ctx, tx, current.ID)
	if err != nil {
		u.log.Warnf("Failed to find doctor by user ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	patient, err := u.resolvePatient(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	template, err := u.templateRepo.FindByID(ctx, tx, req.TemplateID)
	if err != nil {
		u.log.Warnf("Failed to find template by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if template.HospitalID != doctor.HospitalID {
		return nil, ErrNotAllowed
	}

	fields, _, err := service.ClassifyHeaders(template.Headers)
	if err != nil {
		u.log.Warnf("Stored template %d has invalid headers: %+v", template.ID, err)
		return nil, apperror.Internal(err)
	}
	if err := service.ValidateCheckupData(fields, req.Data); err != nil {
		return nil, err
	}

	checkup := &entity.Checkup{
		TemplateID: template.ID,
		DoctorID:   doctor.ID,
		PatientID:  patient.ID,
		Data:       datatypes.JSON(compactJSON(req.Data)),
		Date:       u.db.NowFunc(),
	}
	if err := u.checkupRepo.Create(ctx, tx, checkup); err != nil {
		u.log.Warnf("Failed to create checkup: %+v", err)
		return nil, apperror.Internal(err)
	}
	checkup.Template = template

	response := converter.CheckupToResponse(checkup)
	if err := u.auditService.LogCreate(ctx, tx, &current.ID, entity.AuditActionCheckupCreate, "checkup", checkup.ID, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Internal(err)
	}

	return response, nil
}

// resolvePatient finds the patient by id, or by the document number of its user.
func (u *checkupUsecase) resolvePatient(ctx context.Context, tx *gorm.DB, req *dto.CreateCheckupRequest) (*entity.Patient, error) {
	if req.PatientID != nil {
		patient, err := u.patientRepo.FindByID(ctx, tx, *req.PatientID)
		if err != nil {
			u.log.Warnf("Failed to find patient by ID: %+v", err)
			return nil, apperror.Internal(err)
		}
		if patient == nil {
			return nil, ErrPatientNotFound
		}
		return patient, nil
	}

	if req.DocumentNumber == nil {
		return nil, ErrPatientNotFound
	}
	user, err := u.userRepo.FindByDocumentNumber(ctx, tx, *req.DocumentNumber)
	if err != nil {
		u.log.Warnf("Failed to find user by document number: %+v", err)
		return nil, apperror.Internal(err)
	}
	if user == nil || user.Patient == nil {
		return nil, ErrPatientNotFound
	}
	return user.Patient, nil
}

func compactJSON(data json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return data
	}
	return buf.Bytes()
}

// canReadPatient reports whether current may read the checkups of patientID.
// Doctors and admins read any patient; patients only their own record.
func (u *checkupUsecase) canReadPatient(ctx context.Context, patientID uint, current *entity.CurrentUser) (bool, error) {
	if current == nil {
		return false, nil
	}
	if current.Role != entity.RolePatient {
		return true, nil
	}

	patient, err := u.patientRepo.FindByUserID(ctx, u.db, current.ID)
	if err != nil {
		u.log.Warnf("Failed to find patient by user ID: %+v", err)
		return false, apperror.Internal(err)
	}
	return patient != nil && patient.ID == patientID, nil
}

func (u *checkupUsecase) GetCheckup(ctx context.Context, id uint, current *entity.CurrentUser) (*dto.CheckupResponse, error) {
	if current == nil {
		return nil, ErrNotAllowed
	}

	checkup, err := u.checkupRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find checkup by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if checkup == nil {
		return nil, ErrCheckupNotFound
	}

	allowed, err := u.canReadPatient(ctx, checkup.PatientID, current)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotAllowed
	}
	return converter.CheckupToResponse(checkup), nil
}

// GetCheckupsByDoctorID lists the checkups a doctor recorded. Patients are
// not allowed to list them.
func (u *checkupUsecase) GetCheckupsByDoctorID(ctx context.Context, doctorID uint, current *entity.CurrentUser) (*dto.CheckupListResponse, error) {
	if current == nil || current.Role == entity.RolePatient {
		return nil, ErrNotAllowed
	}

	checkups, err := u.checkupRepo.FindByDoctorID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find checkups by doctor: %+v", err)
		return nil, apperror.Internal(err)
	}
	return &dto.CheckupListResponse{
		Checkups: converter.CheckupsToResponses(checkups),
		Total:    len(checkups),
	}, nil
}

func (u *checkupUsecase) GetCheckupsByPatientID(ctx context.Context, patientID uint, current *entity.CurrentUser) (*dto.CheckupListResponse, error) {
	allowed, err := u.canReadPatient(ctx, patientID, current)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotAllowed
	}

	checkups, err := u.checkupRepo.FindByPatientID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find checkups by patient: %+v", err)
		return nil, apperror.Internal(err)
	}
	return &dto.CheckupListResponse{
		Checkups: converter.CheckupsToResponses(checkups),
		Total:    len(checkups),
	}, nil
}

// DeleteCheckup lets the doctor who recorded a checkup remove it.
func (u *checkupUsecase) DeleteCheckup(ctx context.Context, id uint, current *entity.CurrentUser) error {
	if current == nil || current.Role != entity.RoleDoctor {
		return ErrNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	checkup, err := u.checkupRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find checkup by ID: %+v", err)
		return apperror.Internal(err)
	}
	if checkup == nil {
		return ErrCheckupNotFound
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, tx, current.ID)
	if err != nil {
		u.log.Warnf("Failed to find doctor by user ID: %+v", err)
		return apperror.Internal(err)
	}
	if doctor == nil || doctor.ID != checkup.DoctorID {
		return ErrNotAllowed
	}

	if err := u.checkupRepo.Delete(ctx, tx, checkup.ID); err != nil {
		u.log.Warnf("Failed to delete checkup: %+v", err)
		return apperror.Internal(err)
	}

	if err := u.auditService.LogDelete(ctx, tx, &current.ID, entity.AuditActionCheckupDelete, "checkup", checkup.ID, converter.CheckupToResponse(checkup)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return apperror.Internal(err)
	}

	return nil
}
