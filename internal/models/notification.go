package models

// Notification is a one-way message to a single user.
type Notification struct {
	BaseModel
	RecipientID         string  `gorm:"column:user_id;size:36;index;not null" json:"userId"`
	Content             string  `gorm:"type:text;not null" json:"content"`
	IsRead              bool    `gorm:"default:false;index" json:"isRead"`
	SourceAppointmentID *string `gorm:"size:36;index" json:"sourceAppointmentId,omitempty"`
}
