package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusWaitingForConfirmation AppointmentStatus = "Waiting_for_confirmation"
	StatusPending                AppointmentStatus = "Pending"
	StatusCompleted              AppointmentStatus = "Completed"
	StatusRejected               AppointmentStatus = "Rejected"
)

// AppointmentStatuses lists every status an appointment can hold.
var AppointmentStatuses = []AppointmentStatus{
	StatusWaitingForConfirmation,
	StatusPending,
	StatusCompleted,
	StatusRejected,
}

// Allowed transitions:
//
//	Waiting_for_confirmation → Pending → Completed
//	Waiting_for_confirmation → Rejected
//	Pending → Rejected
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusWaitingForConfirmation: {StatusPending, StatusRejected},
	StatusPending:                {StatusCompleted, StatusRejected},
	StatusCompleted:              {},
	StatusRejected:               {},
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// IsValid reports whether s is one of the known statuses.
func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s → next exists.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PriorStatuses returns every status with an edge into target.
func PriorStatuses(target AppointmentStatus) []AppointmentStatus {
	var from []AppointmentStatus
	for _, s := range AppointmentStatuses {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}

// Gender enum
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Appointment represents a booking between one patient and one doctor
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index;not null" json:"doctorId"`
	Date      string            `gorm:"size:10;not null" json:"date"`
	StartTime string            `gorm:"size:5;not null" json:"startTime"`
	EndTime   string            `gorm:"size:5;not null" json:"endTime"`
	TimeRange string            `gorm:"column:time_range;size:20" json:"time"`
	Status    AppointmentStatus `gorm:"size:30;index;not null;default:'Waiting_for_confirmation'" json:"status"`

	// Clinical intake
	Age            int    `gorm:"not null" json:"age"`
	Gender         Gender `gorm:"size:10;not null" json:"gender"`
	BloodGroup     string `gorm:"size:5" json:"bloodGroup,omitempty"`
	ContactNumber  string `gorm:"column:number;size:20;not null" json:"number"`
	FamilyDiseases string `gorm:"type:text" json:"familyDiseases,omitempty"`
	Email          string `gorm:"size:255" json:"email,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}

// IsParticipant reports whether userID is the patient or the doctor of the appointment.
func (a *Appointment) IsParticipant(userID string) bool {
	return userID != "" && (userID == a.PatientID || userID == a.DoctorID)
}
