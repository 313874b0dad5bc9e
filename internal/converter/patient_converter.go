package converter

import (
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
)

func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:                patient.ID,
		BloodType:         string(patient.BloodType),
		MedicalBackground: patient.MedicalBackground,
	}
}
