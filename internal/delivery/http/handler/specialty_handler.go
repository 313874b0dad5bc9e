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

type SpecialtyHandler struct {
	specialtyUsecase usecase.SpecialtyUsecase
	validator        *validator.CustomValidator
	log              *logrus.Logger
}

func NewSpecialtyHandler(specialtyUsecase usecase.SpecialtyUsecase, validator *validator.CustomValidator, log *logrus.Logger) *SpecialtyHandler {
	return &SpecialtyHandler{
		specialtyUsecase: specialtyUsecase,
		validator:        validator,
		log:              log,
	}
}

func (h *SpecialtyHandler) CreateSpecialty(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	var req dto.CreateSpecialtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	specialty, err := h.specialtyUsecase.CreateSpecialty(r.Context(), &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, "Specialty created successfully", specialty)
}

func (h *SpecialtyHandler) GetSpecialty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid specialty ID", nil)
		return
	}

	specialty, err := h.specialtyUsecase.GetSpecialty(r.Context(), id)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Specialty retrieved successfully", specialty)
}

func (h *SpecialtyHandler) GetSpecialties(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := queryUint(r, "hospital_id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid hospital_id", nil)
		return
	}

	specialties, err := h.specialtyUsecase.GetSpecialties(r.Context(), hospitalID)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Specialties retrieved successfully", specialties)
}

func (h *SpecialtyHandler) UpdateSpecialty(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid specialty ID", nil)
		return
	}

	var req dto.UpdateSpecialtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	specialty, err := h.specialtyUsecase.UpdateSpecialty(r.Context(), id, &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Specialty updated successfully", specialty)
}

func (h *SpecialtyHandler) DeleteSpecialty(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid specialty ID", nil)
		return
	}

	if err := h.specialtyUsecase.DeleteSpecialty(r.Context(), id, current); err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Specialty deleted successfully", nil)
}
