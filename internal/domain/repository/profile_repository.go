package repository

import (
	"context"

	"hospicloud/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Patient, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID uint) (*entity.Patient, error)
	Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error
}

type DoctorRepository interface {
	Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Doctor, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID uint) (*entity.Doctor, error)
	Update(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error
	ReplaceSpecialties(ctx context.Context, db *gorm.DB, doctor *entity.Doctor, specialties []entity.Specialty) error
	DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error
}

type AdminRepository interface {
	Create(ctx context.Context, db *gorm.DB, admin *entity.Admin) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uint) (*entity.Admin, error)
	DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error
}
