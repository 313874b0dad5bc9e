package converter

import (
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
)

func HospitalToResponse(hospital *entity.Hospital) *dto.HospitalResponse {
	if hospital == nil {
		return nil
	}

	response := &dto.HospitalResponse{
		ID:          hospital.ID,
		Name:        hospital.Name,
		Description: hospital.Description,
		Schedule:    hospital.Schedule,
		CreatedAt:   hospital.CreatedAt,
		UpdatedAt:   hospital.UpdatedAt,
	}
	if hospital.Location != nil {
		response.Location = &dto.LocationResponse{
			ID:       hospital.Location.ID,
			Address:  hospital.Location.Address,
			Province: string(hospital.Location.Province),
		}
	}
	return response
}

func HospitalsToResponses(hospitals []entity.Hospital) []dto.HospitalResponse {
	responses := make([]dto.HospitalResponse, len(hospitals))
	for i := range hospitals {
		responses[i] = *HospitalToResponse(&hospitals[i])
	}
	return responses
}

func SpecialtyToResponse(specialty *entity.Specialty) *dto.SpecialtyResponse {
	if specialty == nil {
		return nil
	}

	return &dto.SpecialtyResponse{
		ID:         specialty.ID,
		Name:       specialty.Name,
		HospitalID: specialty.HospitalID,
	}
}

func SpecialtiesToResponses(specialties []entity.Specialty) []dto.SpecialtyResponse {
	responses := make([]dto.SpecialtyResponse, len(specialties))
	for i := range specialties {
		responses[i] = *SpecialtyToResponse(&specialties[i])
	}
	return responses
}
