package handler

import (
	"encoding/json"
	"net/http"

	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/delivery/http/middleware"
	"hospicloud/internal/usecase"
	"hospicloud/pkg/response"
	"hospicloud/pkg/validator"

	"github.com/sirupsen/logrus"
)

type CheckupHandler struct {
	checkupUsecase usecase.CheckupUsecase
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewCheckupHandler(checkupUsecase usecase.CheckupUsecase, validator *validator.CustomValidator, log *logrus.Logger) *CheckupHandler {
	return &CheckupHandler{
		checkupUsecase: checkupUsecase,
		validator:      validator,
		log:            log,
	}
}

func (h *CheckupHandler) CreateCheckup(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	var req dto.CreateCheckupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	checkup, err := h.checkupUsecase.CreateCheckup(r.Context(), &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, "Checkup created successfully", checkup)
}

func (h *CheckupHandler) GetCheckup(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid checkup ID", nil)
		return
	}

	checkup, err := h.checkupUsecase.GetCheckup(r.Context(), id, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Checkup retrieved successfully", checkup)
}

func (h *CheckupHandler) GetCheckupsByDoctor(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	doctorID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	checkups, err := h.checkupUsecase.GetCheckupsByDoctorID(r.Context(), doctorID, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Checkups retrieved successfully", checkups)
}

func (h *CheckupHandler) GetCheckupsByPatient(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	patientID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	checkups, err := h.checkupUsecase.GetCheckupsByPatientID(r.Context(), patientID, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Checkups retrieved successfully", checkups)
}

func (h *CheckupHandler) DeleteCheckup(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid checkup ID", nil)
		return
	}

	if err := h.checkupUsecase.DeleteCheckup(r.Context(), id, current); err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Checkup deleted successfully", nil)
}
