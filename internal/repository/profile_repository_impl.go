package repository

import (
	"context"
	"errors"

	"hospicloud/internal/domain/entity"
	domainRepo "hospicloud/internal/domain/repository"

	"gorm.io/gorm"
)

// Patient Repository

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return db.WithContext(ctx).Omit("User").Create(patient).Error
}

func (r *patientRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uint) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return db.WithContext(ctx).Omit("User").Save(patient).Error
}

func (r *patientRepository) DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Patient{}).Error
}

// Doctor Repository

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

// Create inserts the doctor and its specialty links. Specialties are expected
// to exist already and are never upserted.
func (r *doctorRepository) Create(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	return db.WithContext(ctx).Omit("User", "Hospital", "Specialties.*").Create(doctor).Error
}

func (r *doctorRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.WithContext(ctx).Preload("Specialties").Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uint) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.WithContext(ctx).Preload("Specialties").Where("user_id = ?", userID).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, db *gorm.DB, doctor *entity.Doctor) error {
	return db.WithContext(ctx).Omit("User", "Hospital", "Specialties").Save(doctor).Error
}

func (r *doctorRepository) ReplaceSpecialties(ctx context.Context, db *gorm.DB, doctor *entity.Doctor, specialties []entity.Specialty) error {
	if err := db.WithContext(ctx).Model(doctor).Association("Specialties").Replace(specialties); err != nil {
		return err
	}
	doctor.Specialties = specialties
	return nil
}

func (r *doctorRepository) DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error {
	doctor, err := r.FindByUserID(ctx, db, userID)
	if err != nil || doctor == nil {
		return err
	}
	if err := db.WithContext(ctx).Model(doctor).Association("Specialties").Clear(); err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(doctor).Error
}

// Admin Repository

type adminRepository struct{}

func NewAdminRepository() domainRepo.AdminRepository {
	return &adminRepository{}
}

func (r *adminRepository) Create(ctx context.Context, db *gorm.DB, admin *entity.Admin) error {
	return db.WithContext(ctx).Omit("User", "Hospital").Create(admin).Error
}

func (r *adminRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uint) (*entity.Admin, error) {
	var admin entity.Admin
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) DeleteByUserID(ctx context.Context, db *gorm.DB, userID uint) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Admin{}).Error
}
