package converter

import (
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:          doctor.ID,
		HospitalID:  doctor.HospitalID,
		Schedule:    doctor.Schedule,
		Specialties: SpecialtiesToResponses(doctor.Specialties),
	}
}

func AdminToResponse(admin *entity.Admin) *dto.AdminResponse {
	if admin == nil {
		return nil
	}

	return &dto.AdminResponse{
		ID:         admin.ID,
		HospitalID: admin.HospitalID,
	}
}
