package services

import (
	"fmt"

	"doctor-appointment-server/internal/models"
)

func doctorName(u *models.User) string {
	if name := u.FullName(); name != "" {
		return "Dr. " + name
	}
	return "your doctor"
}

func patientName(u *models.User) string {
	if name := u.FullName(); name != "" {
		return name
	}
	return "your patient"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func slot(a *models.Appointment) string {
	return fmt.Sprintf("on %s from %s to %s", a.Date, a.StartTime, a.EndTime)
}

func bookedDoctorContent(a *models.Appointment) string {
	return fmt.Sprintf(
		"New appointment request from %s %s. Patient details - Age: %d, Blood group: %s, Gender: %s, Phone: %s, Family history: %s",
		patientName(&a.Patient), slot(a), a.Age, orDefault(a.BloodGroup, "Unknown"),
		a.Gender, a.ContactNumber, orDefault(a.FamilyDiseases, "None"),
	)
}

func bookedPatientContent(a *models.Appointment) string {
	return fmt.Sprintf("Your appointment request with %s %s has been submitted and is waiting for confirmation",
		doctorName(&a.Doctor), slot(a))
}

func confirmedPatientContent(a *models.Appointment) string {
	return fmt.Sprintf("Your appointment with %s %s is confirmed", doctorName(&a.Doctor), slot(a))
}

func confirmedDoctorContent(a *models.Appointment) string {
	return fmt.Sprintf("You confirmed the appointment with %s %s", patientName(&a.Patient), slot(a))
}

func rejectedByDoctorPatientContent(a *models.Appointment) string {
	return fmt.Sprintf("%s rejected your appointment %s", doctorName(&a.Doctor), slot(a))
}

func rejectedByDoctorDoctorContent(a *models.Appointment) string {
	return fmt.Sprintf("You rejected the appointment with %s %s", patientName(&a.Patient), slot(a))
}

func cancelledByPatientDoctorContent(a *models.Appointment) string {
	return fmt.Sprintf("%s cancelled the appointment %s", patientName(&a.Patient), slot(a))
}

func cancelledByPatientPatientContent(a *models.Appointment) string {
	return fmt.Sprintf("You cancelled your appointment with %s %s", doctorName(&a.Doctor), slot(a))
}

func completedPatientContent(a *models.Appointment) string {
	return fmt.Sprintf("Your appointment with %s %s has been completed", doctorName(&a.Doctor), slot(a))
}

func completedDoctorContent(a *models.Appointment) string {
	return fmt.Sprintf("Your appointment with %s %s has been completed", patientName(&a.Patient), slot(a))
}
