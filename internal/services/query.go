package services

import (
	"context"
	"errors"
	"fmt"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/repository"
)

// AppointmentView is an appointment with its participants' display attributes.
type AppointmentView struct {
	models.Appointment
	PatientInfo models.UserSummary `json:"patient"`
	DoctorInfo  models.UserSummary `json:"doctor"`
}

func NewAppointmentView(a *models.Appointment) *AppointmentView {
	return &AppointmentView{
		Appointment: *a,
		PatientInfo: a.Patient.Summary(),
		DoctorInfo:  a.Doctor.Summary(),
	}
}

// PublicStats is the landing-page counter set.
type PublicStats struct {
	Doctors      int64                              `json:"doctors"`
	Patients     int64                              `json:"patients"`
	Appointments int64                              `json:"appointments"`
	ByStatus     map[models.AppointmentStatus]int64 `json:"byStatus"`
}

// QueryService serves role-scoped appointment reads.
type QueryService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
}

func NewQueryService(appointments repository.AppointmentRepository, users repository.UserRepository) *QueryService {
	return &QueryService{appointments: appointments, users: users}
}

// ListForCaller returns the appointments visible to the caller, newest first.
// Admins see every appointment, doctors the ones assigned to them, and
// everyone else the ones they booked. The role is read from the stored user,
// not from the token.
func (s *QueryService) ListForCaller(ctx context.Context, callerID string) ([]AppointmentView, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	caller, err := s.users.GetByID(ctx, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load caller %s: %w", callerID, err)
	}

	var items []models.Appointment
	switch {
	case caller.Role == models.RoleAdmin:
		items, err = s.appointments.ListAll(ctx)
	case caller.ActsAsDoctor():
		items, err = s.appointments.ListByDoctor(ctx, caller.ID)
	default:
		items, err = s.appointments.ListByPatient(ctx, caller.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	views := make([]AppointmentView, 0, len(items))
	for i := range items {
		views = append(views, *NewAppointmentView(&items[i]))
	}
	return views, nil
}

// Stats counts users and appointments. Every known status is present in
// ByStatus, zero when unused.
func (s *QueryService) Stats(ctx context.Context) (*PublicStats, error) {
	doctors, err := s.users.CountDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("count doctors: %w", err)
	}
	patients, err := s.users.CountPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}
	counts, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}

	stats := &PublicStats{
		Doctors:  doctors,
		Patients: patients,
		ByStatus: make(map[models.AppointmentStatus]int64, len(models.AppointmentStatuses)),
	}
	for _, status := range models.AppointmentStatuses {
		stats.ByStatus[status] = counts[status]
		stats.Appointments += counts[status]
	}
	return stats, nil
}
