package dto

import (
	"encoding/json"
	"time"
)

// Request DTOs

// CreateTemplateRequest declares a checkup form. Headers is a JSON object of
// field name to "string" or "int"; a JSON string holding that object is also
// accepted.
type CreateTemplateRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	SpecialtyID uint            `json:"specialty_id" validate:"required"`
	HospitalID  uint            `json:"hospital_id" validate:"required"`
	Headers     json.RawMessage `json:"headers" validate:"required"`
}

type UpdateTemplateRequest struct {
	Title   *string         `json:"title" validate:"omitempty,max=255"`
	Headers json.RawMessage `json:"headers"`
}

type CreateCheckupRequest struct {
	TemplateID     uint            `json:"template_id" validate:"required"`
	PatientID      *uint           `json:"patient_id" validate:"required_without=DocumentNumber"`
	DocumentNumber *string         `json:"document_number" validate:"required_without=PatientID,omitempty,max=11"`
	Data           json.RawMessage `json:"data" validate:"required"`
}

// Response DTOs

type TemplateResponse struct {
	ID                 uint               `json:"id"`
	Title              string             `json:"title"`
	SpecialtyID        uint               `json:"specialty_id"`
	HospitalID         uint               `json:"hospital_id"`
	Headers            json.RawMessage    `json:"headers"`
	NumericFields      int                `json:"numeric_fields"`
	AlphanumericFields int                `json:"alphanumeric_fields"`
	Specialty          *SpecialtyResponse `json:"specialty,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          *time.Time         `json:"updated_at"`
}

type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
	Total     int                `json:"total"`
}

type CheckupResponse struct {
	ID         uint              `json:"id"`
	TemplateID uint              `json:"template_id"`
	DoctorID   uint              `json:"doctor_id"`
	PatientID  uint              `json:"patient_id"`
	Data       json.RawMessage   `json:"data"`
	Date       time.Time         `json:"date"`
	Template   *TemplateResponse `json:"template,omitempty"`
}

type CheckupListResponse struct {
	Checkups []CheckupResponse `json:"checkups"`
	Total    int               `json:"total"`
}
