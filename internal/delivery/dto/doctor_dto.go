package dto

// DoctorResponse represents the doctor sub-record of a user
type DoctorResponse struct {
	ID          uint                `json:"id"`
	HospitalID  uint                `json:"hospital_id"`
	Schedule    string              `json:"schedule"`
	Specialties []SpecialtyResponse `json:"specialties"`
}

type AdminResponse struct {
	ID         uint `json:"id"`
	HospitalID uint `json:"hospital_id"`
}
