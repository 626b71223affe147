package models

import "testing"

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusWaitingForConfirmation, StatusPending, true},
		{StatusWaitingForConfirmation, StatusRejected, true},
		{StatusWaitingForConfirmation, StatusCompleted, false},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusWaitingForConfirmation, false},
		{StatusCompleted, StatusRejected, false},
		{StatusCompleted, StatusPending, false},
		{StatusRejected, StatusPending, false},
		{StatusRejected, StatusRejected, false},
		{AppointmentStatus("Confirmed"), StatusCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	for _, s := range AppointmentStatuses {
		want := s == StatusCompleted || s == StatusRejected
		if s.IsTerminal() != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, s.IsTerminal(), want)
		}
	}
}

func TestAppointmentStatus_IsValid(t *testing.T) {
	for _, s := range AppointmentStatuses {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []AppointmentStatus{"Confirmed", "Cancelled", "pending", ""} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestPriorStatuses(t *testing.T) {
	from := PriorStatuses(StatusRejected)
	if len(from) != 2 || from[0] != StatusWaitingForConfirmation || from[1] != StatusPending {
		t.Errorf("unexpected prior statuses for Rejected: %v", from)
	}
	from = PriorStatuses(StatusCompleted)
	if len(from) != 1 || from[0] != StatusPending {
		t.Errorf("unexpected prior statuses for Completed: %v", from)
	}
	if got := PriorStatuses(StatusWaitingForConfirmation); len(got) != 0 {
		t.Errorf("expected no edges into the initial status, got %v", got)
	}
}

func TestAppointment_IsParticipant(t *testing.T) {
	a := &Appointment{PatientID: "p1", DoctorID: "d1"}
	if !a.IsParticipant("p1") || !a.IsParticipant("d1") {
		t.Error("expected patient and doctor to be participants")
	}
	if a.IsParticipant("other") || a.IsParticipant("") {
		t.Error("expected non-participants to be rejected")
	}
}

func TestUser_ActsAsDoctor(t *testing.T) {
	if !(&User{Role: RoleDoctor}).ActsAsDoctor() {
		t.Error("doctor role should act as doctor")
	}
	if !(&User{Role: RolePatient, IsDoctor: true}).ActsAsDoctor() {
		t.Error("approved doctor flag should act as doctor")
	}
	if (&User{Role: RolePatient}).ActsAsDoctor() {
		t.Error("patient should not act as doctor")
	}
}
