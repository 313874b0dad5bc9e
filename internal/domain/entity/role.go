package entity

// Role identifies which sub-record a User carries.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

type DocumentType string

const (
	DocumentTypeNationalID DocumentType = "national_id"
	DocumentTypePassport   DocumentType = "passport"
)

type BloodType string

const (
	BloodTypeAPlus   BloodType = "a_plus"
	BloodTypeAMinus  BloodType = "a_minus"
	BloodTypeBPlus   BloodType = "b_plus"
	BloodTypeBMinus  BloodType = "b_minus"
	BloodTypeOPlus   BloodType = "o_plus"
	BloodTypeOMinus  BloodType = "o_minus"
	BloodTypeABPlus  BloodType = "ab_plus"
	BloodTypeABMinus BloodType = "ab_minus"
)

// CurrentUser is the authenticated caller as described by its identity claims.
type CurrentUser struct {
	ID         uint
	UID        string
	Role       Role
	HospitalID *uint
}

// SameHospital reports whether the caller belongs to hospitalID.
func (c *CurrentUser) SameHospital(hospitalID *uint) bool {
	if c == nil || c.HospitalID == nil || hospitalID == nil {
		return false
	}
	return *c.HospitalID == *hospitalID
}
