package repository

import (
	"context"

	"hospicloud/internal/domain/entity"

	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, db *gorm.DB, template *entity.Template) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Template, error)
	FindBySpecialtyAndHospital(ctx context.Context, db *gorm.DB, specialtyID, hospitalID uint) (*entity.Template, error)
	FindBySpecialtyIDs(ctx context.Context, db *gorm.DB, specialtyIDs []uint) ([]entity.Template, error)
	FindAll(ctx context.Context, db *gorm.DB, hospitalID *uint) ([]entity.Template, error)
	Update(ctx context.Context, db *gorm.DB, template *entity.Template) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
}

type CheckupRepository interface {
	Create(ctx context.Context, db *gorm.DB, checkup *entity.Checkup) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Checkup, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uint) ([]entity.Checkup, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uint) ([]entity.Checkup, error)
	Delete(ctx context.Context, db *gorm.DB, id uint) error
}
