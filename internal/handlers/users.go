package handlers

import (
	"context"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DoctorDirectory lists bookable doctors.
type DoctorDirectory interface {
	Doctors(ctx context.Context) ([]models.UserSanitized, error)
}

// UserHandler serves user listings.
type UserHandler struct {
	directory DoctorDirectory
	log       zerolog.Logger
}

func NewUserHandler(directory DoctorDirectory, log zerolog.Logger) *UserHandler {
	return &UserHandler{directory: directory, log: log}
}

// GetDoctors lists every doctor so patients can pick one when booking.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.directory.Doctors(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}
