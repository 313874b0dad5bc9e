package converter

import (
	"encoding/json"

	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
)

func TemplateToResponse(template *entity.Template) *dto.TemplateResponse {
	if template == nil {
		return nil
	}

	return &dto.TemplateResponse{
		ID:                 template.ID,
		Title:              template.Title,
		SpecialtyID:        template.SpecialtyID,
		HospitalID:         template.HospitalID,
		Headers:            json.RawMessage(template.Headers),
		NumericFields:      template.NumericFields,
		AlphanumericFields: template.AlphanumericFields,
		Specialty:          SpecialtyToResponse(template.Specialty),
		CreatedAt:          template.CreatedAt,
		UpdatedAt:          template.UpdatedAt,
	}
}

func TemplatesToResponses(templates []entity.Template) []dto.TemplateResponse {
	responses := make([]dto.TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = *TemplateToResponse(&templates[i])
	}
	return responses
}

func CheckupToResponse(checkup *entity.Checkup) *dto.CheckupResponse {
	if checkup == nil {
		return nil
	}

	return &dto.CheckupResponse{
		ID:         checkup.ID,
		TemplateID: checkup.TemplateID,
		DoctorID:   checkup.DoctorID,
		PatientID:  checkup.PatientID,
		Data:       json.RawMessage(checkup.Data),
		Date:       checkup.Date,
		Template:   TemplateToResponse(checkup.Template),
	}
}

func CheckupsToResponses(checkups []entity.Checkup) []dto.CheckupResponse {
	responses := make([]dto.CheckupResponse, len(checkups))
	for i := range checkups {
		responses[i] = *CheckupToResponse(&checkups[i])
	}
	return responses
}
