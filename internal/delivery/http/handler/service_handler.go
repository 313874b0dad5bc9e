package handler

import (
	"net/http"
	"os"

	"hospicloud/pkg/response"
)

type ServiceHandler struct {
	services []string
}

func NewServiceHandler(services []string) *ServiceHandler {
	return &ServiceHandler{services: services}
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "ok", map[string]interface{}{
		"status":   "ok",
		"services": h.services,
	})
}

// AppointmentsRoot reports which container answered.
func (h *ServiceHandler) AppointmentsRoot(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()
	response.Success(w, http.StatusOK, "Appointments service", map[string]string{
		"service":   "appointments",
		"container": hostname,
	})
}
