package repository

import (
	"context"
	"errors"
	"strings"

	"hospicloud/internal/domain/entity"
	domainRepo "hospicloud/internal/domain/repository"

	"gorm.io/gorm"
)

type hospitalRepository struct{}

func NewHospitalRepository() domainRepo.HospitalRepository {
	return &hospitalRepository{}
}

// Create inserts the hospital together with its location.
func (r *hospitalRepository) Create(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error {
	return db.WithContext(ctx).Create(hospital).Error
}

func (r *hospitalRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Hospital, error) {
	var hospital entity.Hospital
	err := db.WithContext(ctx).Preload("Location").Where("id = ?", id).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hospital, nil
}

func (r *hospitalRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Hospital, error) {
	var hospital entity.Hospital
	err := db.WithContext(ctx).Preload("Location").Where("name = ?", name).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hospital, nil
}

// FindAll lists hospitals, optionally filtered by a case-insensitive name fragment.
func (r *hospitalRepository) FindAll(ctx context.Context, db *gorm.DB, name string) ([]entity.Hospital, error) {
	query := db.WithContext(ctx).Preload("Location")
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var hospitals []entity.Hospital
	if err := query.Order("name ASC").Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, nil
}

func (r *hospitalRepository) Update(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error {
	if hospital.Location != nil {
		if err := db.WithContext(ctx).Save(hospital.Location).Error; err != nil {
			return err
		}
	}
	return db.WithContext(ctx).Omit("Location").Save(hospital).Error
}

func (r *hospitalRepository) Delete(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error {
	if err := db.WithContext(ctx).Delete(hospital).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", hospital.LocationID).Delete(&entity.Location{}).Error
}

type specialtyRepository struct{}

func NewSpecialtyRepository() domainRepo.SpecialtyRepository {
	return &specialtyRepository{}
}

func (r *specialtyRepository) Create(ctx context.Context, db *gorm.DB, specialty *entity.Specialty) error {
	return db.WithContext(ctx).Omit("Hospital").Create(specialty).Error
}

func (r *specialtyRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Specialty, error) {
	var specialty entity.Specialty
	err := db.WithContext(ctx).Where("id = ?", id).First(&specialty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &specialty, nil
}

// FindByIDs returns the specialties that exist among ids. Unknown ids are skipped.
func (r *specialtyRepository) FindByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]entity.Specialty, error) {
	specialties := []entity.Specialty{}
	if len(ids) == 0 {
		return specialties, nil
	}
	if err := db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&specialties).Error; err != nil {
		return nil, err
	}
	return specialties, nil
}

func (r *specialtyRepository) FindByNameAndHospital(ctx context.Context, db *gorm.DB, name string, hospitalID uint) (*entity.Specialty, error) {
	var specialty entity.Specialty
	err := db.WithContext(ctx).Where("name = ? AND hospital_id = ?", name, hospitalID).First(&specialty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &specialty, nil
}

func (r *specialtyRepository) FindAll(ctx context.Context, db *gorm.DB, hospitalID *uint) ([]entity.Specialty, error) {
	query := db.WithContext(ctx)
	if hospitalID != nil {
		query = query.Where("hospital_id = ?", *hospitalID)
	}

	var specialties []entity.Specialty
	if err := query.Order("name ASC").Find(&specialties).Error; err != nil {
		return nil, err
	}
	return specialties, nil
}

func (r *specialtyRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uint) ([]entity.Specialty, error) {
	var specialties []entity.Specialty
	err := db.WithContext(ctx).
		Joins("JOIN doctor_specialty ON doctor_specialty.specialty_id = specialties.id").
		Where("doctor_specialty.doctor_id = ?", doctorID).
		Order("specialties.id ASC").
		Find(&specialties).Error
	if err != nil {
		return nil, err
	}
	return specialties, nil
}

func (r *specialtyRepository) Update(ctx context.Context, db *gorm.DB, specialty *entity.Specialty) error {
	return db.WithContext(ctx).Omit("Hospital").Save(specialty).Error
}

func (r *specialtyRepository) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	if err := db.WithContext(ctx).Exec("DELETE FROM doctor_specialty WHERE specialty_id = ?", id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Specialty{}).Error
}
