package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"doctor-appointment-server/internal/services"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AppointmentEngine applies lifecycle transitions.
type AppointmentEngine interface {
	Book(ctx context.Context, caller services.Caller, in services.BookingInput) (*services.AppointmentView, error)
	Confirm(ctx context.Context, caller services.Caller, appointmentID string) (*services.AppointmentView, error)
	Reject(ctx context.Context, caller services.Caller, appointmentID string) (*services.AppointmentView, error)
	Complete(ctx context.Context, caller services.Caller, appointmentID string) (*services.AppointmentView, error)
}

// AppointmentQuery serves appointment reads.
type AppointmentQuery interface {
	ListForCaller(ctx context.Context, callerID string) ([]services.AppointmentView, error)
	Stats(ctx context.Context) (*services.PublicStats, error)
}

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	engine AppointmentEngine
	query  AppointmentQuery
	log    zerolog.Logger
}

func NewAppointmentHandler(engine AppointmentEngine, query AppointmentQuery, log zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{engine: engine, query: query, log: log}
}

// BookAppointmentRequest accepts either startTime/endTime or the combined
// "HH:MM - HH:MM" range in `time`. Clinical fields left out are taken from
// the patient's profile.
type BookAppointmentRequest struct {
	DoctorID       string  `json:"doctorId" binding:"required"`
	Date           string  `json:"date" binding:"required"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Time           string  `json:"time"`
	Age            flexInt `json:"age"`
	Gender         string  `json:"gender"`
	Number         string  `json:"number"`
	BloodGroup     string  `json:"bloodGroup"`
	FamilyDiseases string  `json:"familyDiseases"`
	Email          string  `json:"email"`
}

// flexInt accepts a JSON number or a numeric string, as browser forms send
// numbers as text. An empty string or null leaves the value unset.
type flexInt struct {
	value *int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.value = nil
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		raw = strings.TrimSpace(text)
		if raw == "" {
			f.value = nil
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expected a whole number, got %s", data)
	}
	f.value = &n
	return nil
}

// Ptr returns nil when the field was absent or empty.
func (f flexInt) Ptr() *int {
	return f.value
}

// AppointmentActionRequest identifies the appointment to confirm or reject.
type AppointmentActionRequest struct {
	AppointID string `json:"appointid" binding:"required"`
}

// CompleteAppointmentRequest carries doctorId and doctorname for older
// clients; authorization always uses the stored appointment.
type CompleteAppointmentRequest struct {
	AppointID  string `json:"appointid" binding:"required"`
	DoctorID   string `json:"doctorId"`
	DoctorName string `json:"doctorname"`
}

// GetAllAppointments returns the caller's appointments, newest first.
func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	items, err := h.query.ListForCaller(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", items)
}

func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.engine.Book(c.Request.Context(), caller, services.BookingInput{
		DoctorID:       req.DoctorID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TimeRange:      req.Time,
		Age:            req.Age.Ptr(),
		Gender:         req.Gender,
		ContactNumber:  req.Number,
		BloodGroup:     req.BloodGroup,
		FamilyDiseases: req.FamilyDiseases,
		Email:          req.Email,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appt)
}

func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req AppointmentActionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appt, err := h.engine.Confirm(c.Request.Context(), caller, req.AppointID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Appointment confirmed successfully", appt)
}

func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req CompleteAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appt, err := h.engine.Complete(c.Request.Context(), caller, req.AppointID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Appointment completed successfully", appt)
}

func (h *AppointmentHandler) RejectAppointment(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req AppointmentActionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appt, err := h.engine.Reject(c.Request.Context(), caller, req.AppointID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Appointment rejected successfully", appt)
}

// PublicStats is served without authentication.
func (h *AppointmentHandler) PublicStats(c *gin.Context) {
	stats, err := h.query.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Statistics fetched successfully", stats)
}
