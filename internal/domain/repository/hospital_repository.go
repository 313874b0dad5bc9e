package repository

import (
	"context"

	"hospicloud/internal/domain/entity"

	"gorm.io/gorm"
)

type HospitalRepository interface {
	Create(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Hospital, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Hospital, error)
	FindAll(ctx context.Context, db *gorm.DB, name string) ([]entity.Hospital, error)
	Update(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error
	Delete(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error
}

type SpecialtyRepository interface {
	Create(ctx context.Context, db *gorm.DB, specialty *entity.Specialty) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Specialty, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]entity.Specialty, error)
	FindByNameAndHospital(ctx context.Context, db *gorm.DB, name string, hospitalID uint) (*entity.Specialty, error)
	FindAll(ctx context.Context, db *gorm.DB, hospitalID *uint) ([]entity.Specialty, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uint) ([]entity.Specialty, error)
	Update(ctx context.Context, db *gorm.DB, specialty *entity.Specialty) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
}
