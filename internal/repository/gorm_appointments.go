package repository

import (
	"context"

	"doctor-appointment-server/internal/models"

	"gorm.io/gorm"
)

// Columns joined onto listings. The password hash never leaves the users table.
var participantColumns = []string{"id", "first_name", "last_name", "email", "mobile", "profile_image"}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	// Omit associations so the preloaded participants are not upserted.
	return r.db.WithContext(ctx).Omit("Patient", "Doctor").Create(a).Error
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.withParticipants(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// TransitionStatus issues a single conditional UPDATE, so two callers racing on
// the same prior status cannot both succeed.
func (r *GormAppointmentRepository) TransitionStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormAppointmentRepository) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return r.list(ctx, r.withParticipants(ctx))
}

func (r *GormAppointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.list(ctx, r.withParticipants(ctx).Where("doctor_id = ?", doctorID))
}

func (r *GormAppointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.list(ctx, r.withParticipants(ctx).Where("patient_id = ?", patientID))
}

func (r *GormAppointmentRepository) CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error) {
	var rows []struct {
		Status models.AppointmentStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *GormAppointmentRepository) withParticipants(ctx context.Context) *gorm.DB {
	selectParticipant := func(db *gorm.DB) *gorm.DB {
		return db.Select(participantColumns)
	}
	return r.db.WithContext(ctx).
		Preload("Patient", selectParticipant).
		Preload("Doctor", selectParticipant)
}

func (r *GormAppointmentRepository) list(_ context.Context, q *gorm.DB) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := q.Order("created_at desc").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}
