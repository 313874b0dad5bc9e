package bootstrap

import (
	"net/http"

	"hospicloud/config"
	deliveryHttp "hospicloud/internal/delivery/http"
	"hospicloud/internal/delivery/http/handler"
	"hospicloud/internal/delivery/http/middleware"
	"hospicloud/internal/infrastructure/identity"
	"hospicloud/internal/infrastructure/mail"
	"hospicloud/internal/repository"
	"hospicloud/internal/service"
	"hospicloud/internal/usecase"
	"hospicloud/pkg/metrics"
	"hospicloud/pkg/password"
	"hospicloud/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the external collaborators the HTTP layer is built on.
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *logrus.Logger
	Provider identity.Provider
	Hasher   password.Hasher
	Mailer   mail.Mailer
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// NewHTTPHandler wires repositories, usecases and handlers for services and
// returns the router together with the identity provisioner it uses.
func NewHTTPHandler(services []string, deps Dependencies) (http.Handler, service.IdentityProvisioner) {
	cfg := deps.Config
	db := deps.DB
	log := deps.Log

	// Usecases and the auth middleware share one provider so deprovisioning
	// evicts cached tokens.
	provider := deps.Provider
	if cfg.Identity.ClaimsTTL > 0 {
		provider = identity.NewCachedProvider(provider, cfg.Identity.ClaimsTTL)
	}

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
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

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	accountService := service.NewAccountService(log, userRepo, patientRepo, doctorRepo, adminRepo, outboxRepo, provider, cfg.Identity.Bypass)
	provisioner := service.NewIdentityProvisioner(db, log, cfg.Outbox, userRepo, outboxRepo, provider, deps.Hasher, deps.Mailer, deps.Metrics)

	// Initialize usecases
	userUsecase := usecase.NewUserUsecase(db, log, userRepo, patientRepo, doctorRepo, adminRepo, hospitalRepo, specialtyRepo,
		outboxRepo, auditService, accountService, provisioner, deps.Hasher, cfg.Identity.Bypass)
	authUsecase := usecase.NewAuthUsecase(log, provider)
	hospitalUsecase := usecase.NewHospitalUsecase(db, log, hospitalRepo, userRepo, auditService, accountService)
	specialtyUsecase := usecase.NewSpecialtyUsecase(db, log, specialtyRepo, hospitalRepo, auditService)
	templateUsecase := usecase.NewTemplateUsecase(db, log, templateRepo, specialtyRepo, doctorRepo, auditService)
	checkupUsecase := usecase.NewCheckupUsecase(db, log, checkupRepo, templateRepo, doctorRepo, patientRepo, userRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:      handler.NewAuthHandler(authUsecase, userUsecase, customValidator, log),
		User:      handler.NewUserHandler(userUsecase, customValidator, log),
		Hospital:  handler.NewHospitalHandler(hospitalUsecase, customValidator, log),
		Specialty: handler.NewSpecialtyHandler(specialtyUsecase, customValidator, log),
		Template:  handler.NewTemplateHandler(templateUsecase, customValidator, log),
		Checkup:   handler.NewCheckupHandler(checkupUsecase, customValidator, log),
		AuditLog:  handler.NewAuditLogHandler(auditLogUsecase, log),
		Service:   handler.NewServiceHandler(services),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(provider, log)
	corsMiddleware := middleware.NewCORSMiddleware("")
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Initialize router
	router := deliveryHttp.NewRouter(services, handlers, authMiddleware, corsMiddleware, rateLimiter, deps.Metrics, log)
	return router.Setup(), provisioner
}
