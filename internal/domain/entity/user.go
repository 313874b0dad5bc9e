package entity

import (
	"time"
)

// User represents the centralized account table. Exactly one of Patient,
// Doctor or Admin is set, matching UserRole.
type User struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserRole       Role         `gorm:"type:varchar(20);not null;index" json:"user_role"`
	DocumentType   DocumentType `gorm:"type:varchar(20);not null" json:"document_type"`
	Name           string       `gorm:"type:varchar(50);not null" json:"name"`
	LastName       string       `gorm:"type:varchar(50);not null" json:"last_name"`
	Email          string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DocumentNumber string       `gorm:"type:varchar(11);index" json:"document_number"`
	DateOfBirth    time.Time    `gorm:"type:date" json:"date_of_birth"`
	Password       string       `gorm:"type:text;not null" json:"-"`
	ExternalID     *string      `gorm:"column:uid;type:varchar(128);uniqueIndex" json:"uid,omitempty"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      *time.Time   `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	Doctor  *Doctor  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"doctor,omitempty"`
	Admin   *Admin   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"admin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// RoleProfile is the role-specific sub-record of a User.
type RoleProfile interface {
	Role() Role
	GetHospitalID() *uint
}

// Profile returns the sub-record selected by the user's role, or nil when it
// has not been loaded.
func (u *User) Profile() RoleProfile {
	switch u.UserRole {
	case RolePatient:
		if u.Patient != nil {
			return u.Patient
		}
	case RoleDoctor:
		if u.Doctor != nil {
			return u.Doctor
		}
	case RoleAdmin:
		if u.Admin != nil {
			return u.Admin
		}
	}
	return nil
}

// HospitalID returns the hospital of a doctor or admin. Patients have none.
func (u *User) HospitalID() *uint {
	if p := u.Profile(); p != nil {
		return p.GetHospitalID()
	}
	return nil
}

// FullName is used as the identity display name.
func (u *User) FullName() string {
	return u.Name + " " + u.LastName
}

// UserFilter is a domain-level filter for listing users.
type UserFilter struct {
	Role       *Role
	HospitalID *uint
}
