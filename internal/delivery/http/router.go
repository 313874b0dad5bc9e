package http

import (
	"net/http"

	"hospicloud/internal/delivery/http/handler"
	"hospicloud/internal/delivery/http/middleware"
	"hospicloud/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Service names accepted by `serve --service`.
const (
	ServiceUsers        = "users"
	ServiceUtilities    = "utilities"
	ServiceTemplates    = "templates"
	ServiceCheckups     = "checkups"
	ServiceAppointments = "appointments"
	ServiceAll          = "all"
)

var AllServices = []string{ServiceUsers, ServiceUtilities, ServiceTemplates, ServiceCheckups, ServiceAppointments}

type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Hospital  *handler.HospitalHandler
	Specialty *handler.SpecialtyHandler
	Template  *handler.TemplateHandler
	Checkup   *handler.CheckupHandler
	AuditLog  *handler.AuditLogHandler
	Service   *handler.ServiceHandler
}

type Router struct {
	router         *mux.Router
	services       map[string]bool
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
	rateLimiter    *middleware.RateLimiter
	metrics        *metrics.Metrics
	log            *logrus.Logger
}

func NewRouter(
	services []string,
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	log *logrus.Logger,
) *Router {
	enabled := make(map[string]bool, len(services))
	for _, s := range services {
		enabled[s] = true
	}
	return &Router{
		router:         mux.NewRouter(),
		services:       enabled,
		handlers:       handlers,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
		rateLimiter:    rateLimiter,
		metrics:        m,
		log:            log,
	}
}

func (r *Router) Setup() http.Handler {
	r.router.Use(middleware.RequestLogger(r.log))
	r.router.Use(middleware.Recovery(r.log))
	if r.metrics != nil {
		r.router.Use(middleware.Metrics(r.metrics))
		r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.handlers.Service.Health).Methods(http.MethodGet)

	if r.services[ServiceUsers] {
		r.setupUsers(api)
	}
	if r.services[ServiceUtilities] {
		r.setupUtilities(api)
	}
	if r.services[ServiceTemplates] {
		r.setupTemplates(api)
	}
	if r.services[ServiceCheckups] {
		r.setupCheckups(api)
	}
	if r.services[ServiceAppointments] {
		api.HandleFunc("/appointments", r.handlers.Service.AppointmentsRoot).Methods(http.MethodGet)
	}

	// Preflight requests match no route, so CORS wraps the whole router.
	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) setupUsers(api *mux.Router) {
	// Public routes, rate limited
	public := api.NewRoute().Subrouter()
	public.Use(r.rateLimiter.Handle)
	public.HandleFunc("/register", r.handlers.Auth.Register).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", r.handlers.Auth.Login).Methods(http.MethodPost)

	users := api.PathPrefix("/users").Subrouter()
	users.Use(r.authMiddleware.Authenticate)
	users.Handle("", middleware.RequireAdmin(http.HandlerFunc(r.handlers.User.CreateUser))).Methods(http.MethodPost)
	users.Handle("", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.handlers.User.GetUsers))).Methods(http.MethodGet)
	users.HandleFunc("/me", r.handlers.User.GetCurrentUser).Methods(http.MethodGet)
	users.Handle("/document-number/{number}", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.handlers.User.GetUserByDocumentNumber))).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", r.handlers.User.GetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/history", r.handlers.User.GetHistory).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", r.handlers.User.UpdateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}", r.handlers.User.DeleteUser).Methods(http.MethodDelete)

	// Audit trail (admin)
	audit := api.PathPrefix("/audit-logs").Subrouter()
	audit.Use(r.authMiddleware.Authenticate)
	audit.Use(middleware.RequireAdmin)
	audit.HandleFunc("", r.handlers.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	audit.HandleFunc("/{id:[0-9]+}", r.handlers.AuditLog.GetAuditLog).Methods(http.MethodGet)
}

func (r *Router) setupUtilities(api *mux.Router) {
	// Hospitals are created before their first admin exists.
	api.Handle("/hospitals", r.optionalAuth(http.HandlerFunc(r.handlers.Hospital.CreateHospital))).Methods(http.MethodPost)
	api.HandleFunc("/hospitals", r.handlers.Hospital.GetHospitals).Methods(http.MethodGet)
	api.HandleFunc("/hospitals/{id:[0-9]+}", r.handlers.Hospital.GetHospital).Methods(http.MethodGet)

	hospitals := api.PathPrefix("/hospitals").Subrouter()
	hospitals.Use(r.authMiddleware.Authenticate)
	hospitals.Use(middleware.RequireAdmin)
	hospitals.HandleFunc("/{id:[0-9]+}", r.handlers.Hospital.UpdateHospital).Methods(http.MethodPut)
	hospitals.HandleFunc("/{id:[0-9]+}", r.handlers.Hospital.DeleteHospital).Methods(http.MethodDelete)

	api.HandleFunc("/specialties", r.handlers.Specialty.GetSpecialties).Methods(http.MethodGet)
	api.HandleFunc("/specialties/{id:[0-9]+}", r.handlers.Specialty.GetSpecialty).Methods(http.MethodGet)

	specialties := api.PathPrefix("/specialties").Subrouter()
	specialties.Use(r.authMiddleware.Authenticate)
	specialties.Use(middleware.RequireAdmin)
	specialties.HandleFunc("", r.handlers.Specialty.CreateSpecialty).Methods(http.MethodPost)
	specialties.HandleFunc("/{id:[0-9]+}", r.handlers.Specialty.UpdateSpecialty).Methods(http.MethodPut)
	specialties.HandleFunc("/{id:[0-9]+}", r.handlers.Specialty.DeleteSpecialty).Methods(http.MethodDelete)
}

func (r *Router) setupTemplates(api *mux.Router) {
	templates := api.PathPrefix("/templates").Subrouter()
	templates.Use(r.authMiddleware.Authenticate)
	templates.HandleFunc("", r.handlers.Template.GetTemplates).Methods(http.MethodGet)
	templates.HandleFunc("/{id:[0-9]+}", r.handlers.Template.GetTemplate).Methods(http.MethodGet)
	templates.HandleFunc("/doctor/{id:[0-9]+}", r.handlers.Template.GetTemplatesByDoctor).Methods(http.MethodGet)
	templates.Handle("", middleware.RequireAdmin(http.HandlerFunc(r.handlers.Template.CreateTemplate))).Methods(http.MethodPost)
	templates.Handle("/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(r.handlers.Template.UpdateTemplate))).Methods(http.MethodPut)
	templates.Handle("/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(r.handlers.Template.DeleteTemplate))).Methods(http.MethodDelete)
}

func (r *Router) setupCheckups(api *mux.Router) {
	checkups := api.PathPrefix("/checkups").Subrouter()
	checkups.Use(r.authMiddleware.Authenticate)
	checkups.Handle("", middleware.RequireDoctor(http.HandlerFunc(r.handlers.Checkup.CreateCheckup))).Methods(http.MethodPost)
	checkups.HandleFunc("/{id:[0-9]+}", r.handlers.Checkup.GetCheckup).Methods(http.MethodGet)
	checkups.HandleFunc("/doctor/{id:[0-9]+}", r.handlers.Checkup.GetCheckupsByDoctor).Methods(http.MethodGet)
	checkups.HandleFunc("/patient/{id:[0-9]+}", r.handlers.Checkup.GetCheckupsByPatient).Methods(http.MethodGet)
	checkups.Handle("/{id:[0-9]+}", middleware.RequireDoctor(http.HandlerFunc(r.handlers.Checkup.DeleteCheckup))).Methods(http.MethodDelete)
}

// optionalAuth authenticates the request when it carries a bearer token and
// lets it through anonymously otherwise.
func (r *Router) optionalAuth(next http.Handler) http.Handler {
	authenticated := r.authMiddleware.Authenticate(next)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, req)
			return
		}
		authenticated.ServeHTTP(w, req)
	})
}
