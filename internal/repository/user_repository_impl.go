package repository

import (
	"context"
	"errors"

	"hospicloud/internal/domain/entity"
	domainRepo "hospicloud/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func withProfiles(db *gorm.DB) *gorm.DB {
	return db.Preload("Patient").Preload("Doctor.Specialties").Preload("Admin")
}

func (r *userRepository) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*entity.User, error) {
	return r.first(ctx, db, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	return r.first(ctx, db, "email = ?", email)
}

func (r *userRepository) FindByDocumentNumber(ctx context.Context, db *gorm.DB, documentNumber string) (*entity.User, error) {
	return r.first(ctx, db, "document_number = ?", documentNumber)
}

func (r *userRepository) FindByExternalID(ctx context.Context, db *gorm.DB, uid string) (*entity.User, error) {
	return r.first(ctx, db, "uid = ?", uid)
}

func (r *userRepository) first(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*entity.User, error) {
	var user entity.User
	err := withProfiles(db.WithContext(ctx)).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindAll lists users. With a role and a hospital the role's sub-record table
// is joined; with only a hospital the doctors and admins of that hospital are
// returned, since patients have no hospital.
func (r *userRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.UserFilter) ([]entity.User, error) {
	query := withProfiles(db.WithContext(ctx)).Model(&entity.User{})

	switch {
	case filter.Role != nil && filter.HospitalID != nil:
		switch *filter.Role {
		case entity.RoleDoctor:
			query = query.Joins("JOIN doctors ON doctors.user_id = users.id").
				Where("doctors.hospital_id = ?", *filter.HospitalID)
		case entity.RoleAdmin:
			query = query.Joins("JOIN admins ON admins.user_id = users.id").
				Where("admins.hospital_id = ?", *filter.HospitalID)
		default:
			return []entity.User{}, nil
		}
		query = query.Where("users.user_role = ?", *filter.Role)
	case filter.HospitalID != nil:
		doctors := db.WithContext(ctx).Model(&entity.Doctor{}).Select("user_id").Where("hospital_id = ?", *filter.HospitalID)
		admins := db.WithContext(ctx).Model(&entity.Admin{}).Select("user_id").Where("hospital_id = ?", *filter.HospitalID)
		query = query.Where("users.id IN (?) OR users.id IN (?)", doctors, admins)
	case filter.Role != nil:
		query = query.Where("users.user_role = ?", *filter.Role)
	}

	var users []entity.User
	if err := query.Order("users.id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindDoctorsOfPatient returns the distinct users of the doctors who created a
// checkup for the patient.
func (r *userRepository) FindDoctorsOfPatient(ctx context.Context, db *gorm.DB, patientID uint) ([]entity.User, error) {
	doctors := db.WithContext(ctx).Model(&entity.Doctor{}).
		Select("doctors.user_id").
		Joins("JOIN checkups ON checkups.doctor_id = doctors.id").
		Where("checkups.patient_id = ?", patientID)

	var users []entity.User
	err := withProfiles(db.WithContext(ctx)).Where("users.id IN (?)", doctors).Order("users.id ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindPatientsOfDoctor returns the distinct users of the patients the doctor
// has checked.
func (r *userRepository) FindPatientsOfDoctor(ctx context.Context, db *gorm.DB, doctorID uint) ([]entity.User, error) {
	patients := db.WithContext(ctx).Model(&entity.Patient{}).
		Select("patients.user_id").
		Joins("JOIN checkups ON checkups.patient_id = patients.id").
		Where("checkups.doctor_id = ?", doctorID)

	var users []entity.User
	err := withProfiles(db.WithContext(ctx)).Where("users.id IN (?)", patients).Order("users.id ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) SetExternalID(ctx context.Context, db *gorm.DB, userID uint, uid *string) error {
	return db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", userID).Update("uid", uid).Error
}

func (r *userRepository) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.User{}).Error
}
