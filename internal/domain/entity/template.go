package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Header field types accepted in a template schema.
const (
	FieldTypeString = "string"
	FieldTypeInt    = "int"
)

// Template is the checkup form of a specialty inside a hospital. Headers maps
// field name to field type.
type Template struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Title              string         `gorm:"type:varchar(255);not null" json:"title"`
	SpecialtyID        uint           `gorm:"not null;uniqueIndex:idx_template_specialty_hospital" json:"specialty_id"`
	HospitalID         uint           `gorm:"not null;uniqueIndex:idx_template_specialty_hospital" json:"hospital_id"`
	Headers            datatypes.JSON `json:"headers"`
	NumericFields      int            `gorm:"not null;default:0" json:"numeric_fields"`
	AlphanumericFields int            `gorm:"not null;default:0" json:"alphanumeric_fields"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          *time.Time     `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`

	Specialty *Specialty `gorm:"foreignKey:SpecialtyID" json:"specialty,omitempty"`
	Hospital  *Hospital  `gorm:"foreignKey:HospitalID" json:"-"`
}

func (Template) TableName() string {
	return "templates"
}

// Checkup is a filled template, created by a doctor for a patient.
type Checkup struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TemplateID uint           `gorm:"not null;index" json:"template_id"`
	DoctorID   uint           `gorm:"not null;index" json:"doctor_id"`
	PatientID  uint           `gorm:"not null;index" json:"patient_id"`
	Data       datatypes.JSON `json:"data"`
	Date       time.Time      `gorm:"not null" json:"date"`

	Template *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Doctor   *Doctor   `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient  *Patient  `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Checkup) TableName() string {
	return "checkups"
}
