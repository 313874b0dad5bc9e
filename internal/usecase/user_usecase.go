package usecase

import (
	"context"
	"time"

	"hospicloud/internal/converter"
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/domain/repository"
	"hospicloud/internal/service"
	"hospicloud/pkg/apperror"
	"hospicloud/pkg/password"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound           = apperror.NotFound("User")
	ErrEmailAlreadyRegistered = apperror.Validation("Email already registered")
	ErrRegisterRoleNotAllowed = apperror.Validation("can only register admin or patient")
	ErrCreateRoleNotAllowed   = apperror.Validation("can only create admin or doctor")
	ErrMissingRoleProfile     = apperror.Validation("the sub-object matching user_role is required")
	ErrUnknownHospital        = apperror.Validation("hospital_id does not reference an existing hospital")
	ErrUserHasRecords         = apperror.Conflict("User has related records and cannot be deleted")
)

type UserUsecase interface {
	Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, current *entity.CurrentUser) (*dto.UserResponse, error)
	GetUsers(ctx context.Context, query dto.UserListQuery, current *entity.CurrentUser) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, id uint, current *entity.CurrentUser) (*dto.UserResponse, error)
	GetUserByDocumentNumber(ctx context.Context, documentNumber string) (*dto.UserResponse, error)
	GetCurrentUser(ctx context.Context, current *entity.CurrentUser) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id uint, req *dto.UpdateUserRequest, current *entity.CurrentUser) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, id uint, current *entity.CurrentUser) error
	GetHistory(ctx context.Context, id uint, current *entity.CurrentUser) (*dto.UserListResponse, error)
}

type userUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	userRepo       repository.UserRepository
	patientRepo    repository.PatientRepository
	doctorRepo     repository.DoctorRepository
	adminRepo      repository.AdminRepository
	hospitalRepo   repository.HospitalRepository
	specialtyRepo  repository.SpecialtyRepository
	outboxRepo     repository.IdentityOutboxRepository
	auditService   service.AuditService
	accountService service.AccountService
	provisioner    service.IdentityProvisioner
	hasher         password.Hasher
	// bypass skips identity provisioning.
	bypass bool
}

func NewUserUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	adminRepo repository.AdminRepository,
	hospitalRepo repository.HospitalRepository,
	specialtyRepo repository.SpecialtyRepository,
	outboxRepo repository.IdentityOutboxRepository,
	auditService service.AuditService,
	accountService service.AccountService,
	provisioner service.IdentityProvisioner,
	hasher password.Hasher,
	bypass bool,
) UserUsecase {
	return &userUsecase{
		db:             db,
		log:            log,
		userRepo:       userRepo,
		patientRepo:    patientRepo,
		doctorRepo:     doctorRepo,
		adminRepo:      adminRepo,
		hospitalRepo:   hospitalRepo,
		specialtyRepo:  specialtyRepo,
		outboxRepo:     outboxRepo,
		auditService:   auditService,
		accountService: accountService,
		provisioner:    provisioner,
		hasher:         hasher,
		bypass:         bypass,
	}
}

// Register is the public self-service entry. Doctors are only created by admins.
func (u *userUsecase) Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := entity.Role(req.UserRole)
	if role != entity.RoleAdmin && role != entity.RolePatient {
		return nil, ErrRegisterRoleNotAllowed
	}
	return u.create(ctx, req, nil, entity.AuditActionUserRegister)
}

// CreateUser lets an admin create admins and doctors for their own hospital.
func (u *userUsecase) CreateUser(ctx context.Context, req *dto.CreateUserRequest, current *entity.CurrentUser) (*dto.UserResponse, error) {
	if current == nil || current.Role != entity.RoleAdmin {
		return nil, ErrNotAllowed
	}

	var hospitalID uint
	switch entity.Role(req.UserRole) {
	case entity.RoleAdmin:
		if req.Admin == nil {
			return nil, ErrMissingRoleProfile
		}
		hospitalID = req.Admin.HospitalID
	case entity.RoleDoctor:
		if req.Doctor == nil {
			return nil, ErrMissingRoleProfile
		}
		hospitalID = req.Doctor.HospitalID
	default:
		return nil, ErrCreateRoleNotAllowed
	}

	if !current.SameHospital(&hospitalID) {
		return nil, ErrNotAllowed
	}

	return u.create(ctx, req, &current.ID, entity.AuditActionUserCreate)
}

// create stores the user and its role sub-record in one transaction together
// with an identity outbox event, then provisions the identity.
func (u *userUsecase) create(ctx context.Context, req *dto.CreateUserRequest, actorID *uint, action string) (*dto.UserResponse, error) {
	role := entity.Role(req.UserRole)
	if (role == entity.RolePatient && req.Patient == nil) ||
		(role == entity.RoleDoctor && req.Doctor == nil) ||
		(role == entity.RoleAdmin && req.Admin == nil) {
		return nil, ErrMissingRoleProfile
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	// Fast path for a friendly error; the unique index is the source of truth.
	existing, err := u.userRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	plain, err := password.Generate(password.GeneratedLength)
	if err != nil {
		u.log.Warnf("Failed to generate password: %+v", err)
		return nil, apperror.Internal(err)
	}
	hashed, err := u.hasher.Hash(plain)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, apperror.Internal(err)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user := &entity.User{
		UserRole:       role,
		DocumentType:   entity.DocumentType(req.DocumentType),
		Name:           req.Name,
		LastName:       req.LastName,
		Email:          req.Email,
		DocumentNumber: req.DocumentNumber,
		DateOfBirth:    dob,
		Password:       hashed,
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyRegistered
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, apperror.Internal(err)
	}

	switch role {
	case entity.RolePatient:
		patient := &entity.Patient{
			UserID:            user.ID,
			BloodType:         entity.BloodType(req.Patient.BloodType),
			MedicalBackground: req.Patient.MedicalBackground,
		}
		if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
			u.log.Warnf("Failed to create patient: %+v", err)
			return nil, apperror.Internal(err)
		}
		user.Patient = patient

	case entity.RoleDoctor:
		if err := u.ensureHospital(ctx, tx, req.Doctor.HospitalID); err != nil {
			return nil, err
		}
		// Unknown specialty ids are dropped.
		specialties, err := u.specialtyRepo.FindByIDs(ctx, tx, req.Doctor.SpecialtyIDs)
		if err != nil {
			u.log.Warnf("Failed to find specialties: %+v", err)
			return nil, apperror.Internal(err)
		}
		doctor := &entity.Doctor{
			UserID:      user.ID,
			HospitalID:  req.Doctor.HospitalID,
			Schedule:    req.Doctor.Schedule,
			Specialties: specialties,
		}
		if err := u.doctorRepo.Create(ctx, tx, doctor); err != nil {
			u.log.Warnf("Failed to create doctor: %+v", err)
			return nil, apperror.Internal(err)
		}
		user.Doctor = doctor

	case entity.RoleAdmin:
		if err := u.ensureHospital(ctx, tx, req.Admin.HospitalID); err != nil {
			return nil, err
		}
		admin := &entity.Admin{
			UserID:     user.ID,
			HospitalID: req.Admin.HospitalID,
		}
		if err := u.adminRepo.Create(ctx, tx, admin); err != nil {
			u.log.Warnf("Failed to create admin: %+v", err)
			return nil, apperror.Internal(err)
		}
		user.Admin = admin
	}

	var event *entity.IdentityOutbox
	if !u.bypass {
		event = u.provisioner.NewEvent(user.ID)
		if err := u.outboxRepo.Create(ctx, tx, event); err != nil {
			u.log.Warnf("Failed to create identity outbox event: %+v", err)
			return nil, apperror.Internal(err)
		}
	}

	if err := u.auditService.LogCreate(ctx, tx, actorID, action, "user", user.ID, converter.UserToResponse(user)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, apperror.Internal(err)
	}

	if event != nil {
		if err := u.provisioner.Provision(ctx, event, plain); err != nil {
			u.log.Warnf("Identity provisioning for user %d deferred to retry: %+v", user.ID, err)
		} else {
			user.ExternalID = event.ExternalID
		}
	}

	return converter.UserToResponse(user), nil
}

func (u *userUsecase) ensureHospital(ctx context.Context, tx *gorm.DB, hospitalID uint) error {
	hospital, err := u.hospitalRepo.FindByID(ctx, tx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital: %+v", err)
		return apperror.Internal(err)
	}
	if hospital == nil {
		return ErrUnknownHospital
	}
	return nil
}

// GetUsers lists users. Admins and doctors only see the staff of their own
// hospital. Patients belong to no hospital, so listing them ignores it.
func (u *userUsecase) GetUsers(ctx context.Context, query dto.UserListQuery, current *entity.CurrentUser) (*dto.UserListResponse, error) {
	if current == nil || current.Role == entity.RolePatient {
		return nil, ErrNotAllowed
	}

	filter := entity.UserFilter{HospitalID: query.HospitalID}
	if query.UserRole != nil {
		role := entity.Role(*query.UserRole)
		filter.Role = &role
	}
	if current.HospitalID != nil {
		filter.HospitalID = current.HospitalID
	}
	if filter.Role != nil && *filter.Role == entity.RolePatient {
		filter.HospitalID = nil
	}

	users, err := u.userRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find users: %+v", err)
		return nil, apperror.Internal(err)
	}

	return &dto.UserListResponse{
		Users: converter.UsersToResponses(users),
		Total: len(users),
	}, nil
}

// GetUser returns a user. Patients may only read themselves.
func (u *userUsecase) GetUser(ctx context.Context, id uint, current *entity.CurrentUser) (*dto.UserResponse, error) {
	if !canRead(current, id) {
		return nil, ErrNotAllowed
	}

	user, err := u.userRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

func (u *userUsecase) GetUserByDocumentNumber(ctx context.Context, documentNumber string) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByDocumentNumber(ctx, u.db, documentNumber)
	if err != nil {
		u.log.Warnf("Failed to find user by document number: %+v", err)
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

func (u *userUsecase) GetCurrentUser(ctx context.Context, current *entity.CurrentUser) (*dto.UserResponse, error) {
	if current == nil {
		return nil, ErrNotAllowed
	}
	return u.GetUser(ctx, current.ID, current)
}

// canMutate reports whether current may update or delete target: admins act
// on users of their hospital, patients only on themselves.
func canMutate(current *entity.CurrentUser, target *entity.User) bool {
	if current == nil {
		return false
	}
	switch current.Role {
	case entity.RoleAdmin:
		return current.SameHospital(target.HospitalID())
	case entity.RolePatient:
		if target.UserRole != entity.RolePatient {
			return false
		}
		if target.ExternalID != nil && current.UID != "" {
			return *target.ExternalID == current.UID
		}
		return target.ID == current.ID
	}
	return false
}

func (u *userUsecase) UpdateUser(ctx context.Context, id uint, req *dto.UpdateUserRequest, current *entity.CurrentUser) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !canMutate(current, user) {
		return nil, ErrNotAllowed
	}

	oldValue := converter.UserToResponse(user)

	// Update allowed fields only
	changed := false
	if req.Name != nil {
		user.Name = *req.Name
		changed = true
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
		changed = true
	}
	if req.DocumentNumber != nil {
		user.DocumentNumber = *req.DocumentNumber
		changed = true
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		user.DateOfBirth = dob
		changed = true
	}

	switch profile := user.Profile().(type) {
	case *entity.Patient:
		if req.Patient != nil && req.Patient.MedicalBackground != nil {
			profile.MedicalBackground = req.Patient.MedicalBackground
			if err := u.patientRepo.Update(ctx, tx, profile); err != nil {
				u.log.Warnf("Failed to update patient: %+v", err)
				return nil, apperror.Internal(err)
			}
			changed = true
		}

	case *entity.Doctor:
		if req.Doctor != nil && req.Doctor.Schedule != nil {
			profile.Schedule = *req.Doctor.Schedule
			if err := u.doctorRepo.Update(ctx, tx, profile); err != nil {
				u.log.Warnf("Failed to update doctor: %+v", err)
				return nil, apperror.Internal(err)
			}
			changed = true
		}
		if req.Doctor != nil && req.Doctor.SpecialtyIDs != nil {
			specialties, err := u.specialtyRepo.FindByIDs(ctx, tx, *req.Doctor.SpecialtyIDs)
			if err != nil {
				u.log.Warnf("Failed to find specialties: %+v", err)
				return nil, apperror.Internal(err)
			}
			if err := u.doctorRepo.ReplaceSpecialties(ctx, tx, profile, specialties); err != nil {
				u.log.Warnf("Failed to replace doctor specialties: %+v", err)
				return nil, apperror.Internal(err)
			}
			changed = true
		}
	}

	if !changed {
		return oldValue, nil
	}

	now := u.db.NowFunc()
	user.UpdatedAt = &now
	if err := u.userRepo.Update(ctx, tx, user); err != nil {
		u.log.Warnf("Failed to update user: %+v", err)
		return nil, apperror.Internal(err)
	}

	newValue := converter.UserToResponse(user)
	if err := u.auditService.LogUpdate(ctx, tx, &current.ID, entity.AuditActionUserUpdate, "user", user.ID, oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Internal(err)
	}

	return newValue, nil
}

// DeleteUser removes the user and its sub-record, then every identity
// provisioned for it. The local delete commits only after deprovisioning
// succeeds, so a user that cannot be deleted keeps a working identity.
func (u *userUsecase) DeleteUser(ctx context.Context, id uint, current *entity.CurrentUser) error {
	user, err := u.userRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return apperror.Internal(err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !canMutate(current, user) {
		return ErrNotAllowed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	uids, err := u.accountService.Remove(ctx, tx, user)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrUserHasRecords
		}
		u.log.Warnf("Failed to delete user: %+v", err)
		return apperror.Internal(err)
	}

	if err := u.auditService.LogDelete(ctx, tx, &current.ID, entity.AuditActionUserDelete, "user", user.ID, converter.UserToResponse(user)); err != nil {
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

// GetHistory returns the doctors who checked a patient, or the patients a
// doctor has checked. Admins have no history.
func (u *userUsecase) GetHistory(ctx context.Context, id uint, current *entity.CurrentUser) (*dto.UserListResponse, error) {
	if !canRead(current, id) {
		return nil, ErrNotAllowed
	}

	user, err := u.userRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	users := []entity.User{}
	switch profile := user.Profile().(type) {
	case *entity.Patient:
		users, err = u.userRepo.FindDoctorsOfPatient(ctx, u.db, profile.ID)
	case *entity.Doctor:
		users, err = u.userRepo.FindPatientsOfDoctor(ctx, u.db, profile.ID)
	}
	if err != nil {
		u.log.Warnf("Failed to find user history: %+v", err)
		return nil, apperror.Internal(err)
	}

	return &dto.UserListResponse{
		Users: converter.UsersToResponses(users),
		Total: len(users),
	}, nil
}
