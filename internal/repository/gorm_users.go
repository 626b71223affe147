package repository

import (
	"context"

	"doctor-appointment-server/internal/models"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ListDoctors returns every user acting as a doctor, by name.
func (r *GormUserRepository) ListDoctors(ctx context.Context) ([]models.User, error) {
	var doctors []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? OR is_doctor = ?", models.RoleDoctor, true).
		Order("first_name, last_name").
		Find(&doctors).Error
	return doctors, err
}

func (r *GormUserRepository) CountDoctors(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? OR is_doctor = ?", models.RoleDoctor, true).
		Count(&n).Error
	return n, err
}

func (r *GormUserRepository) CountPatients(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_doctor = ?", models.RolePatient, false).
		Count(&n).Error
	return n, err
}
