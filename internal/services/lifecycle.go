package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/repository"
	"doctor-appointment-server/internal/utils"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BookingInput is what a patient submits to request an appointment. Either the
// StartTime/EndTime pair or TimeRange ("HH:MM - HH:MM") must determine the slot.
// Clinical fields left empty fall back to the patient's profile.
type BookingInput struct {
	DoctorID       string
	Date           string
	StartTime      string
	EndTime        string
	TimeRange      string
	Age            *int
	Gender         string
	ContactNumber  string
	BloodGroup     string
	FamilyDiseases string
	Email          string
}

type clinicalIntake struct {
	Age           int    `validate:"required,gt=0,lt=150"`
	Gender        string `validate:"required,oneof=male female other"`
	ContactNumber string `validate:"required,max=20"`
	BloodGroup    string `validate:"omitempty,max=5"`
	Email         string `validate:"omitempty,email"`
}

type notice struct {
	recipientID string
	content     string
}

// AppointmentService owns the appointment state machine:
//
//	book → Waiting_for_confirmation
//	Waiting_for_confirmation --confirm--> Pending --complete--> Completed
//	Waiting_for_confirmation, Pending --reject--> Rejected
//
// Every successful operation stores one notification for each participant.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	notifier     Notifier
	log          zerolog.Logger
}

func NewAppointmentService(appointments repository.AppointmentRepository, users repository.UserRepository, notifier Notifier, log zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		users:        users,
		notifier:     notifier,
		log:          log.With().Str("component", "appointments").Logger(),
	}
}

// Book creates an appointment for the caller as patient. No slot-conflict check
// is made: overlapping bookings with the same doctor are accepted.
func (s *AppointmentService) Book(ctx context.Context, caller Caller, in BookingInput) (*AppointmentView, error) {
	if err := CanTransition(caller, nil, ActionBook); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.DoctorID) == "" {
		return nil, ValidationError("doctorId is required")
	}

	patient, err := s.lookupUser(ctx, caller.ID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	doctor, err := s.lookupUser(ctx, in.DoctorID, ErrDoctorNotFound)
	if err != nil {
		return nil, err
	}

	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return nil, ValidationError(err.Error())
	}
	start, end, err := utils.ResolveTimeSlot(in.StartTime, in.EndTime, in.TimeRange)
	if err != nil {
		return nil, ValidationError(err.Error())
	}

	intake := resolveIntake(in, patient)
	if err := utils.Validate(intake); err != nil {
		return nil, ValidationError(utils.FormatValidationError(err))
	}

	appt := &models.Appointment{
		PatientID:      patient.ID,
		DoctorID:       doctor.ID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		TimeRange:      utils.FormatTimeRange(start, end),
		Status:         models.StatusWaitingForConfirmation,
		Age:            intake.Age,
		Gender:         models.Gender(intake.Gender),
		BloodGroup:     intake.BloodGroup,
		ContactNumber:  intake.ContactNumber,
		FamilyDiseases: strings.TrimSpace(in.FamilyDiseases),
		Email:          intake.Email,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	appt.Patient = *patient
	appt.Doctor = *doctor

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("patient_id", appt.PatientID).
		Str("doctor_id", appt.DoctorID).
		Msg("appointment booked")

	s.fanOut(ctx, appt,
		notice{appt.DoctorID, bookedDoctorContent(appt)},
		notice{appt.PatientID, bookedPatientContent(appt)},
	)
	return NewAppointmentView(appt), nil
}

// Confirm moves a Waiting_for_confirmation appointment to Pending. Only the
// assigned doctor may confirm.
func (s *AppointmentService) Confirm(ctx context.Context, caller Caller, appointmentID string) (*AppointmentView, error) {
	appt, err := s.transition(ctx, caller, appointmentID, ActionConfirm)
	if err != nil {
		return nil, err
	}
	s.fanOut(ctx, appt,
		notice{appt.PatientID, confirmedPatientContent(appt)},
		notice{appt.DoctorID, confirmedDoctorContent(appt)},
	)
	return NewAppointmentView(appt), nil
}

// Reject ends a non-terminal appointment. Either participant may reject; the
// notification wording follows who initiated it.
func (s *AppointmentService) Reject(ctx context.Context, caller Caller, appointmentID string) (*AppointmentView, error) {
	appt, err := s.transition(ctx, caller, appointmentID, ActionReject)
	if err != nil {
		return nil, err
	}
	if caller.ID == appt.DoctorID {
		s.fanOut(ctx, appt,
			notice{appt.PatientID, rejectedByDoctorPatientContent(appt)},
			notice{appt.DoctorID, rejectedByDoctorDoctorContent(appt)},
		)
	} else {
		s.fanOut(ctx, appt,
			notice{appt.DoctorID, cancelledByPatientDoctorContent(appt)},
			notice{appt.PatientID, cancelledByPatientPatientContent(appt)},
		)
	}
	return NewAppointmentView(appt), nil
}

// Complete moves a Pending appointment to Completed. Only the assigned doctor
// may complete, and never straight from Waiting_for_confirmation.
func (s *AppointmentService) Complete(ctx context.Context, caller Caller, appointmentID string) (*AppointmentView, error) {
	appt, err := s.transition(ctx, caller, appointmentID, ActionComplete)
	if err != nil {
		return nil, err
	}
	s.fanOut(ctx, appt,
		notice{appt.PatientID, completedPatientContent(appt)},
		notice{appt.DoctorID, completedDoctorContent(appt)},
	)
	return NewAppointmentView(appt), nil
}

// transition checks the guard, then applies the status change as one
// conditional update. When the update matches no row another request won the
// race; the fresh row is re-checked so the caller gets the precise reason.
func (s *AppointmentService) transition(ctx context.Context, caller Caller, appointmentID string, action Action) (*models.Appointment, error) {
	appt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := CanTransition(caller, appt, action); err != nil {
		return nil, err
	}

	to := targetStatus(action)
	changed, err := s.appointments.TransitionStatus(ctx, appt.ID, models.PriorStatuses(to), to)
	if err != nil {
		return nil, fmt.Errorf("%s appointment %s: %w", action, appt.ID, err)
	}
	if !changed {
		current, err := s.loadAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if err := CanTransition(caller, current, action); err != nil {
			return nil, err
		}
		return nil, ErrConcurrentTransition
	}

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("caller_id", caller.ID).
		Str("from", string(appt.Status)).
		Str("to", string(to)).
		Msg("appointment " + string(action))

	appt.Status = to
	return appt, nil
}

// fanOut stores the notification pair in parallel. Failures are logged and
// never undo the committed transition.
func (s *AppointmentService) fanOut(ctx context.Context, appt *models.Appointment, notices ...notice) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	for _, n := range notices {
		n := n
		g.Go(func() error {
			if _, err := s.notifier.Notify(ctx, n.recipientID, n.content, appt.ID); err != nil {
				s.log.Error().Err(err).
					Str("appointment_id", appt.ID).
					Str("recipient_id", n.recipientID).
					Msg("notification not stored")
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn().Str("appointment_id", appt.ID).Msg("notification fan-out incomplete")
	}
}

func (s *AppointmentService) loadAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ValidationError("appointid is required")
	}
	appt, err := s.appointments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load appointment %s: %w", id, err)
	}
	return appt, nil
}

func (s *AppointmentService) lookupUser(ctx context.Context, id string, notFound error) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	return user, nil
}

func resolveIntake(in BookingInput, patient *models.User) clinicalIntake {
	intake := clinicalIntake{
		Gender:        strings.ToLower(strings.TrimSpace(in.Gender)),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		BloodGroup:    strings.TrimSpace(in.BloodGroup),
		Email:         strings.TrimSpace(in.Email),
	}
	if in.Age != nil {
		intake.Age = *in.Age
	} else if patient.Age != nil {
		intake.Age = *patient.Age
	}
	if intake.Gender == "" {
		intake.Gender = strings.ToLower(patient.Gender)
	}
	if intake.ContactNumber == "" {
		intake.ContactNumber = patient.Mobile
	}
	if intake.BloodGroup == "" {
		intake.BloodGroup = patient.BloodGroup
	}
	if intake.Email == "" {
		intake.Email = patient.Email
	}
	return intake
}
