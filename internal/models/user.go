package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
)

// User represents a user in the system
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName    string `gorm:"size:100" json:"firstname"`
	LastName     string `gorm:"size:100" json:"lastname"`
	Role         Role   `gorm:"size:20;default:'Patient'" json:"role"`
	IsDoctor     bool   `gorm:"default:false" json:"isDoctor"`
	Age          *int   `json:"age,omitempty"`
	Gender       string `gorm:"size:10" json:"gender,omitempty"`
	BloodGroup   string `gorm:"size:5" json:"bloodGroup,omitempty"`
	Mobile       string `gorm:"size:20" json:"mobile,omitempty"`
	Address      string `gorm:"type:text" json:"address,omitempty"`
	ProfileImage string `json:"pic,omitempty"`

	// Relations (not always preloaded)
	DoctorAppointments  []Appointment  `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	PatientAppointments []Appointment  `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications       []Notification `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	Role         Role      `json:"role"`
	IsDoctor     bool      `json:"isDoctor"`
	Age          *int      `json:"age,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	BloodGroup   string    `json:"bloodGroup,omitempty"`
	Mobile       string    `json:"mobile,omitempty"`
	ProfileImage string    `json:"pic,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the display slice of a user joined onto appointment listings.
type UserSummary struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	ProfileImage string `json:"pic"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// ActsAsDoctor reports whether the user sees the doctor side of the appointment book.
func (u *User) ActsAsDoctor() bool {
	return u.Role == RoleDoctor || u.IsDoctor
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		IsDoctor:     u.IsDoctor,
		Age:          u.Age,
		Gender:       u.Gender,
		BloodGroup:   u.BloodGroup,
		Mobile:       u.Mobile,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Summary returns the display attributes used in appointment listings.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Mobile:       u.Mobile,
		ProfileImage: u.ProfileImage,
	}
}
