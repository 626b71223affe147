package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN     string
	Verbose bool
}

// OpenDB opens the MySQL connection without touching the schema.
func OpenDB(config DatabaseConfig) (*gorm.DB, error) {
	level := gormlogger.Warn
	if config.Verbose {
		level = gormlogger.Info
	}
	return gorm.Open(mysql.Open(config.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Appointment{},
		&Notification{},
	)
}

// InitDB opens the connection and runs migrations.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	db, err := OpenDB(config)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
