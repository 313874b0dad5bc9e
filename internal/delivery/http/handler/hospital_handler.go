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

type HospitalHandler struct {
	hospitalUsecase usecase.HospitalUsecase
	validator       *validator.CustomValidator
	log             *logrus.Logger
}

func NewHospitalHandler(hospitalUsecase usecase.HospitalUsecase, validator *validator.CustomValidator, log *logrus.Logger) *HospitalHandler {
	return &HospitalHandler{
		hospitalUsecase: hospitalUsecase,
		validator:       validator,
		log:             log,
	}
}

func (h *HospitalHandler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	var req dto.CreateHospitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	hospital, err := h.hospitalUsecase.CreateHospital(r.Context(), &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, "Hospital created successfully", hospital)
}

func (h *HospitalHandler) GetHospital(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid hospital ID", nil)
		return
	}

	hospital, err := h.hospitalUsecase.GetHospital(r.Context(), id)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Hospital retrieved successfully", hospital)
}

func (h *HospitalHandler) GetHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.hospitalUsecase.GetHospitals(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Hospitals retrieved successfully", hospitals)
}

func (h *HospitalHandler) UpdateHospital(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid hospital ID", nil)
		return
	}

	var req dto.UpdateHospitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	hospital, err := h.hospitalUsecase.UpdateHospital(r.Context(), id, &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Hospital updated successfully", hospital)
}

func (h *HospitalHandler) DeleteHospital(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid hospital ID", nil)
		return
	}

	if err := h.hospitalUsecase.DeleteHospital(r.Context(), id, current); err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Hospital deleted successfully", nil)
}
