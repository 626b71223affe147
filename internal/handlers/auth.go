package handlers

import (
	"context"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/services"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Authenticator covers sign-up, login and profile reads.
type Authenticator interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.UserSanitized, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Profile(ctx context.Context, userID string) (*models.UserSanitized, error)
}

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	auth Authenticator
	log  zerolog.Logger
}

func NewAuthHandler(auth Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// RegisterRequest represents the request body for user registration.
// Admins are provisioned out of band.
type RegisterRequest struct {
	FirstName string `json:"firstname" binding:"required"`
	LastName  string `json:"lastname" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=Patient Doctor"`
	Age       *int   `json:"age"`
	Gender    string `json:"gender"`
	Mobile    string `json:"mobile"`
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		Age:       req.Age,
		Gender:    req.Gender,
		Mobile:    req.Mobile,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Created(c, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Login successful", session)
}

// GetProfile returns the authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	user, err := h.auth.Profile(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Profile fetched successfully", user)
}
