package dto

import "time"

// Request DTOs

type LocationRequest struct {
	Address  string `json:"address" validate:"required,max=250"`
	Province string `json:"province" validate:"required,province"`
}

type CreateHospitalRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Schedule    string          `json:"schedule" validate:"required,max=255"`
	Location    LocationRequest `json:"location" validate:"required"`
}

type UpdateHospitalRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Schedule    *string          `json:"schedule" validate:"omitempty,max=255"`
	Location    *LocationRequest `json:"location"`
}

type CreateSpecialtyRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	HospitalID uint   `json:"hospital_id" validate:"required"`
}

type UpdateSpecialtyRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
}

// Response DTOs

type LocationResponse struct {
	ID       uint   `json:"id"`
	Address  string `json:"address"`
	Province string `json:"province"`
}

type HospitalResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Schedule    string            `json:"schedule"`
	Location    *LocationResponse `json:"location"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at"`
}

type HospitalListResponse struct {
	Hospitals []HospitalResponse `json:"hospitals"`
	Total     int                `json:"total"`
}

type SpecialtyResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	HospitalID uint   `json:"hospital_id"`
}

type SpecialtyListResponse struct {
	Specialties []SpecialtyResponse `json:"specialties"`
	Total       int                 `json:"total"`
}
