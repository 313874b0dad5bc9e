package repository

import (
	"context"
	"errors"

	"hospicloud/internal/domain/entity"
	domainRepo "hospicloud/internal/domain/repository"

	"gorm.io/gorm"
)

type templateRepository struct{}

func NewTemplateRepository() domainRepo.TemplateRepository {
	return &templateRepository{}
}

func (r *templateRepository) Create(ctx context.Context, db *gorm.DB, template *entity.Template) error {
	return db.WithContext(ctx).Omit("Specialty", "Hospital").Create(template).Error
}

func (r *templateRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Template, error) {
	var template entity.Template
	err := db.WithContext(ctx).Preload("Specialty").Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) FindBySpecialtyAndHospital(ctx context.Context, db *gorm.DB, specialtyID, hospitalID uint) (*entity.Template, error) {
	var template entity.Template
	err := db.WithContext(ctx).Where("specialty_id = ? AND hospital_id = ?", specialtyID, hospitalID).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) FindBySpecialtyIDs(ctx context.Context, db *gorm.DB, specialtyIDs []uint) ([]entity.Template, error) {
	templates := []entity.Template{}
	if len(specialtyIDs) == 0 {
		return templates, nil
	}
	err := db.WithContext(ctx).Preload("Specialty").
		Where("specialty_id IN ?", specialtyIDs).
		Order("id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) FindAll(ctx context.Context, db *gorm.DB, hospitalID *uint) ([]entity.Template, error) {
	query := db.WithContext(ctx).Preload("Specialty")
	if hospitalID != nil {
		query = query.Where("hospital_id = ?", *hospitalID)
	}

	var templates []entity.Template
	if err := query.Order("id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, db *gorm.DB, template *entity.Template) error {
	return db.WithContext(ctx).Omit("Specialty", "Hospital").Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Template{}).Error
}

type checkupRepository struct{}

func NewCheckupRepository() domainRepo.CheckupRepository {
	return &checkupRepository{}
}

func (r *checkupRepository) Create(ctx context.Context, db *gorm.DB, checkup *entity.Checkup) error {
	return db.WithContext(ctx).Omit("Template", "Doctor", "Patient").Create(checkup).Error
}

func (r *checkupRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Checkup, error) {
	var checkup entity.Checkup
	err := db.WithContext(ctx).Preload("Template").Where("id = ?", id).First(&checkup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkup, nil
}

func (r *checkupRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uint) ([]entity.Checkup, error) {
	var checkups []entity.Checkup
	err := db.WithContext(ctx).Preload("Template").
		Where("doctor_id = ?", doctorID).
		Order("date DESC").
		Find(&checkups).Error
	if err != nil {
		return nil, err
	}
	return checkups, nil
}

func (r *checkupRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uint) ([]entity.Checkup, error) {
	var checkups []entity.Checkup
	err := db.WithContext(ctx).Preload("Template").
		Where("patient_id = ?", patientID).
		Order("date DESC").
		Find(&checkups).Error
	if err != nil {
		return nil, err
	}
	return checkups, nil
}

func (r *checkupRepository) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Checkup{}).Error
}
