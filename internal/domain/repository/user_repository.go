package repository

import (
	"context"

	"hospicloud/internal/domain/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error)
	FindByDocumentNumber(ctx context.Context, db *gorm.DB, documentNumber string) (*entity.User, error)
	FindByExternalID(ctx context.Context, db *gorm.DB, uid string) (*entity.User, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.UserFilter) ([]entity.User, error)
	FindDoctorsOfPatient(ctx context.Context, db *gorm.DB, patientID uint) ([]entity.User, error)
	FindPatientsOfDoctor(ctx context.Context, db *gorm.DB, doctorID uint) ([]entity.User, error)
	Update(ctx context.Context, db *gorm.DB, user *entity.User) error
	SetExternalID(ctx context.Context, db *gorm.DB, userID uint, uid *string) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
}
