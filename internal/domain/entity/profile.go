package entity

type Patient struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	BloodType         BloodType `gorm:"type:varchar(10)" json:"blood_type"`
	MedicalBackground *string   `gorm:"type:text" json:"medical_background,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

func (Patient) Role() Role { return RolePatient }

func (Patient) GetHospitalID() *uint { return nil }

type Doctor struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	HospitalID uint   `gorm:"not null;index" json:"hospital_id"`
	Schedule   string `gorm:"type:varchar(255)" json:"schedule"`

	User        *User       `gorm:"foreignKey:UserID" json:"-"`
	Hospital    *Hospital   `gorm:"foreignKey:HospitalID" json:"-"`
	Specialties []Specialty `gorm:"many2many:doctor_specialty;constraint:OnDelete:CASCADE" json:"specialties"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (Doctor) Role() Role { return RoleDoctor }

func (d *Doctor) GetHospitalID() *uint {
	id := d.HospitalID
	return &id
}

type Admin struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	UserID     uint `gorm:"uniqueIndex;not null" json:"user_id"`
	HospitalID uint `gorm:"not null;index" json:"hospital_id"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}

func (Admin) Role() Role { return RoleAdmin }

func (a *Admin) GetHospitalID() *uint {
	id := a.HospitalID
	return &id
}
