package services

import (
	"doctor-appointment-server/internal/models"
)

// Action is a write operation on an appointment.
type Action string

const (
	ActionBook     Action = "book"
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   string
	Role models.Role
}

// CanTransition decides whether caller may perform action on appt. It returns nil
// to allow, or a *Error carrying the reason.
//
// Write access is participant-based only; the admin role grants nothing here.
// Participation is checked before status, so the assigned doctor sees the
// status-specific reason while outsiders only learn they are not allowed.
func CanTransition(caller Caller, appt *models.Appointment, action Action) error {
	if caller.ID == "" {
		return ErrUnauthenticated
	}
	if action == ActionBook {
		return nil
	}
	if appt == nil {
		return ErrAppointmentNotFound
	}

	switch action {
	case ActionConfirm:
		if caller.ID != appt.DoctorID {
			return ErrNotAssignedDoctor
		}
		if appt.Status != models.StatusWaitingForConfirmation {
			return ErrNotConfirmable
		}
	case ActionComplete:
		if caller.ID != appt.DoctorID {
			return ErrNotAssignedDoctor
		}
		switch appt.Status {
		case models.StatusPending:
		case models.StatusCompleted:
			return ErrAlreadyCompleted
		case models.StatusRejected:
			return ErrCannotCompleteRejected
		case models.StatusWaitingForConfirmation:
			return ErrNotCompletable
		default:
			return ErrUnknownStatus
		}
	case ActionReject:
		if !appt.IsParticipant(caller.ID) {
			return ErrNotParticipant
		}
		switch appt.Status {
		case models.StatusWaitingForConfirmation, models.StatusPending:
		case models.StatusCompleted:
			return ErrCannotRejectCompleted
		case models.StatusRejected:
			return ErrAlreadyRejected
		default:
			return ErrUnknownStatus
		}
	default:
		return ValidationError("unknown action " + string(action))
	}
	return nil
}

// targetStatus is the status each write action moves an appointment into.
func targetStatus(action Action) models.AppointmentStatus {
	switch action {
	case ActionConfirm:
		return models.StatusPending
	case ActionReject:
		return models.StatusRejected
	case ActionComplete:
		return models.StatusCompleted
	default:
		return models.StatusWaitingForConfirmation
	}
}
