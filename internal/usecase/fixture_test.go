package usecase

import (
	"context"
	"testing"

	"hospicloud/config"
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/repository"
	"hospicloud/internal/service"
	"hospicloud/internal/testutil"
	"hospicloud/pkg/password"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	provider *testutil.FakeProvider
	mailer   *testutil.FakeMailer

	users       UserUsecase
	auth        AuthUsecase
	hospitals   HospitalUsecase
	specialties SpecialtyUsecase
	templates   TemplateUsecase
	checkups    CheckupUsecase
	auditLogs   AuditLogUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return buildFixture(t, false)
}

// buildFixture wires every usecase over an in-memory database and the fake
// identity provider. bypass disables identity provisioning.
func buildFixture(t *testing.T, bypass bool) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := testutil.NewLogger()
	provider := testutil.NewFakeProvider()
	mailer := &testutil.FakeMailer{}
	hasher := password.NewBcryptHasher(4)

	userRepo := repository.NewUserRepository()
	patientRepo := repository.NewPatientRepository()
	doctorRepo := repository.NewDoctorRepository()
	adminRepo := repository.NewAdminRepository()
	hospitalRepo := repository.NewHospitalRepository()
	specialtyRepo := repository.NewSpecialtyRepository()
	templateRepo := repository.NewTemplateRepository()
	checkupRepo := repository.NewCheckupRepository()
	outboxRepo := repository.NewIdentityOutboxRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	auditService := service.NewAuditService(log, auditLogRepo)
	accountService := service.NewAccountService(log, userRepo, patientRepo, doctorRepo, adminRepo, outboxRepo, provider, bypass)
	provisioner := service.NewIdentityProvisioner(db, log, config.OutboxConfig{MaxAttempts: 3},
		userRepo, outboxRepo, provider, hasher, mailer, nil)

	return &fixture{
		db:       db,
		provider: provider,
		mailer:   mailer,
		users: NewUserUsecase(db, log, userRepo, patientRepo, doctorRepo, adminRepo, hospitalRepo, specialtyRepo,
			outboxRepo, auditService, accountService, provisioner, hasher, bypass),
		auth:        NewAuthUsecase(log, provider),
		hospitals:   NewHospitalUsecase(db, log, hospitalRepo, userRepo, auditService, accountService),
		specialties: NewSpecialtyUsecase(db, log, specialtyRepo, hospitalRepo, auditService),
		templates:   NewTemplateUsecase(db, log, templateRepo, specialtyRepo, doctorRepo, auditService),
		checkups:    NewCheckupUsecase(db, log, checkupRepo, templateRepo, doctorRepo, patientRepo, userRepo, auditService),
		auditLogs:   NewAuditLogUsecase(db, log, auditLogRepo),
	}
}

func (f *fixture) seedHospital(t *testing.T, name string) *entity.Hospital {
	t.Helper()
	hospital := &entity.Hospital{
		Name:     name,
		Schedule: "24/7",
		Location: &entity.Location{Address: "Av. Independencia 1", Province: entity.ProvinceSantoDomingo},
	}
	require.NoError(t, f.db.Create(hospital).Error)
	return hospital
}

func (f *fixture) seedSpecialty(t *testing.T, name string, hospitalID uint) *entity.Specialty {
	t.Helper()
	specialty := &entity.Specialty{Name: name, HospitalID: hospitalID}
	require.NoError(t, f.db.Create(specialty).Error)
	return specialty
}

// seedAdmin registers an admin of hospitalID and returns it as a caller.
func (f *fixture) seedAdmin(t *testing.T, email string, hospitalID uint) *entity.CurrentUser {
	t.Helper()
	created, err := f.users.Register(context.Background(), adminRequest(email, hospitalID))
	require.NoError(t, err)
	return f.current(t, created.ID)
}

func (f *fixture) seedPatient(t *testing.T, email, documentNumber string) (*dto.UserResponse, *entity.CurrentUser) {
	t.Helper()
	created, err := f.users.Register(context.Background(), patientRequest(email, documentNumber))
	require.NoError(t, err)
	return created, f.current(t, created.ID)
}

func (f *fixture) seedDoctor(t *testing.T, admin *entity.CurrentUser, email string, specialtyIDs ...uint) (*dto.UserResponse, *entity.CurrentUser) {
	t.Helper()
	created, err := f.users.CreateUser(context.Background(), doctorRequest(email, *admin.HospitalID, specialtyIDs...), admin)
	require.NoError(t, err)
	return created, f.current(t, created.ID)
}

// current loads the stored user and builds the caller its token would carry.
func (f *fixture) current(t *testing.T, userID uint) *entity.CurrentUser {
	t.Helper()
	user, err := repository.NewUserRepository().FindByID(context.Background(), f.db, userID)
	require.NoError(t, err)
	require.NotNil(t, user)
	return testutil.CurrentUser(user)
}

func baseRequest(role entity.Role, email string) *dto.CreateUserRequest {
	return &dto.CreateUserRequest{
		UserRole:       string(role),
		DocumentType:   string(entity.DocumentTypeNationalID),
		Name:           "Ana",
		LastName:       "Perez",
		Email:          email,
		DocumentNumber: "00100000001",
		DateOfBirth:    "1990-04-12",
	}
}

func patientRequest(email, documentNumber string) *dto.CreateUserRequest {
	req := baseRequest(entity.RolePatient, email)
	req.DocumentNumber = documentNumber
	req.Patient = &dto.PatientRequest{BloodType: string(entity.BloodTypeOPlus)}
	return req
}

func adminRequest(email string, hospitalID uint) *dto.CreateUserRequest {
	req := baseRequest(entity.RoleAdmin, email)
	req.Admin = &dto.AdminRequest{HospitalID: hospitalID}
	return req
}

func doctorRequest(email string, hospitalID uint, specialtyIDs ...uint) *dto.CreateUserRequest {
	req := baseRequest(entity.RoleDoctor, email)
	req.Doctor = &dto.DoctorRequest{HospitalID: hospitalID, Schedule: "Mon-Fri 8-12", SpecialtyIDs: specialtyIDs}
	return req
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }
