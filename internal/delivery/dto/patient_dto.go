package dto

// PatientResponse represents the patient sub-record of a user
type PatientResponse struct {
	ID                uint    `json:"id"`
	BloodType         string  `json:"blood_type"`
	MedicalBackground *string `json:"medical_background"`
}
