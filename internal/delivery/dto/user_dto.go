package dto

import (
	"time"
)

// Request DTOs

// CreateUserRequest is used by both self registration and privileged
// creation. The sub-object matching user_role is required.
type CreateUserRequest struct {
	UserRole       string          `json:"user_role" validate:"required,oneof=admin doctor patient"`
	DocumentType   string          `json:"document_type" validate:"required,oneof=national_id passport"`
	Name           string          `json:"name" validate:"required,max=50"`
	LastName       string          `json:"last_name" validate:"required,max=50"`
	Email          string          `json:"email" validate:"required,email"`
	DocumentNumber string          `json:"document_number" validate:"required,max=11"`
	DateOfBirth    string          `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Patient        *PatientRequest `json:"patient"`
	Doctor         *DoctorRequest  `json:"doctor"`
	Admin          *AdminRequest   `json:"admin"`
}

type PatientRequest struct {
	BloodType         string  `json:"blood_type" validate:"required,oneof=a_plus a_minus b_plus b_minus o_plus o_minus ab_plus ab_minus"`
	MedicalBackground *string `json:"medical_background"`
}

type DoctorRequest struct {
	HospitalID   uint   `json:"hospital_id" validate:"required"`
	Schedule     string `json:"schedule" validate:"max=255"`
	SpecialtyIDs []uint `json:"specialty_ids"`
}

type AdminRequest struct {
	HospitalID uint `json:"hospital_id" validate:"required"`
}

// UpdateUserRequest carries a partial update. Absent or null fields are left
// unchanged and fields outside this allow-list are ignored.
type UpdateUserRequest struct {
	Name           *string               `json:"name" validate:"omitempty,max=50"`
	LastName       *string               `json:"last_name" validate:"omitempty,max=50"`
	DocumentNumber *string               `json:"document_number" validate:"omitempty,max=11"`
	DateOfBirth    *string               `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Patient        *UpdatePatientRequest `json:"patient"`
	Doctor         *UpdateDoctorRequest  `json:"doctor"`
}

type UpdatePatientRequest struct {
	MedicalBackground *string `json:"medical_background"`
}

type UpdateDoctorRequest struct {
	Schedule     *string `json:"schedule" validate:"omitempty,max=255"`
	SpecialtyIDs *[]uint `json:"specialty_ids"`
}

type UserListQuery struct {
	UserRole   *string `validate:"omitempty,oneof=admin doctor patient"`
	HospitalID *uint
}

// Response DTOs

type UserResponse struct {
	ID             uint             `json:"id"`
	UserRole       string           `json:"user_role"`
	DocumentType   string           `json:"document_type"`
	Name           string           `json:"name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	DocumentNumber string           `json:"document_number"`
	DateOfBirth    string           `json:"date_of_birth"`
	UID            *string          `json:"uid"`
	Patient        *PatientResponse `json:"patient,omitempty"`
	Doctor         *DoctorResponse  `json:"doctor,omitempty"`
	Admin          *AdminResponse   `json:"admin,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      *time.Time       `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}
