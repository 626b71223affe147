// Package repository persists users, appointments and notifications.
package repository

import (
	"context"
	"errors"

	"doctor-appointment-server/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListDoctors(ctx context.Context) ([]models.User, error)
	CountDoctors(ctx context.Context) (int64, error)
	CountPatients(ctx context.Context) (int64, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// TransitionStatus moves the appointment to `to` only if its current status is
	// one of `from`. It reports whether a row changed.
	TransitionStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.Notification, int64, error)
	ListUnread(ctx context.Context, recipientID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) (bool, error)
	DeleteAll(ctx context.Context, recipientID string) (int64, error)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
