package services

import "errors"

// ErrorKind classifies failures the HTTP layer turns into 4xx responses.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindInvalidState
	KindValidation
	KindUnauthenticated
)

// Error is a caller-facing failure with a human-readable message.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// ValidationError wraps a bad-input failure.
func ValidationError(msg string) *Error {
	return newError(KindValidation, msg)
}

// KindOf returns the kind of err, or KindInternal for anything unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrAppointmentNotFound  = newError(KindNotFound, "appointment not found")
	ErrUserNotFound         = newError(KindNotFound, "user not found")
	ErrDoctorNotFound       = newError(KindNotFound, "doctor not found")
	ErrNotificationNotFound = newError(KindNotFound, "notification not found or not owned by the user")

	ErrUnauthenticated   = newError(KindForbidden, "an authenticated caller is required")
	ErrNotAssignedDoctor = newError(KindForbidden, "only the assigned doctor may perform this action")
	ErrNotParticipant    = newError(KindForbidden, "only the patient or the doctor of this appointment may perform this action")

	ErrNotConfirmable         = newError(KindInvalidState, "appointment is not awaiting confirmation")
	ErrAlreadyRejected        = newError(KindInvalidState, "appointment is already rejected")
	ErrCannotRejectCompleted  = newError(KindInvalidState, "cannot reject a completed appointment")
	ErrAlreadyCompleted       = newError(KindInvalidState, "appointment is already completed")
	ErrCannotCompleteRejected = newError(KindInvalidState, "cannot complete a rejected appointment")
	ErrNotCompletable         = newError(KindInvalidState, "appointment must be confirmed before it can be completed")
	ErrConcurrentTransition   = newError(KindInvalidState, "appointment status changed while the request was processed")
	ErrUnknownStatus          = newError(KindInvalidState, "appointment has an unknown status")

	ErrEmailTaken         = newError(KindValidation, "user with this email already exists")
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid email or password")
)
