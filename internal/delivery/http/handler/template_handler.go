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

type TemplateHandler struct {
	templateUsecase usecase.TemplateUsecase
	validator       *validator.CustomValidator
	log             *logrus.Logger
}

func NewTemplateHandler(templateUsecase usecase.TemplateUsecase, validator *validator.CustomValidator, log *logrus.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateUsecase: templateUsecase,
		validator:       validator,
		log:             log,
	}
}

func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	var req dto.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	template, err := h.templateUsecase.CreateTemplate(r.Context(), &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, "Template created successfully", template)
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid template ID", nil)
		return
	}

	template, err := h.templateUsecase.GetTemplate(r.Context(), id)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Template retrieved successfully", template)
}

func (h *TemplateHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := queryUint(r, "hospital_id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid hospital_id", nil)
		return
	}

	templates, err := h.templateUsecase.GetTemplates(r.Context(), hospitalID)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Templates retrieved successfully", templates)
}

func (h *TemplateHandler) GetTemplatesByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	templates, err := h.templateUsecase.GetTemplatesByDoctorID(r.Context(), doctorID)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Templates retrieved successfully", templates)
}

func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid template ID", nil)
		return
	}

	var req dto.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	template, err := h.templateUsecase.UpdateTemplate(r.Context(), id, &req, current)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Template updated successfully", template)
}

func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetCurrentUser(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid template ID", nil)
		return
	}

	if err := h.templateUsecase.DeleteTemplate(r.Context(), id, current); err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Template deleted successfully", nil)
}
