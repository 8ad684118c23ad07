package models

import (
	"gorm.io/gorm"
)

// RegistrationStatus tracks a booking through attendance and CFU validation.
type RegistrationStatus string

const (
	RegistrationRegistered   RegistrationStatus = "REGISTERED"
	RegistrationAttended     RegistrationStatus = "ATTENDED"
	RegistrationCFUValidated RegistrationStatus = "CFU_VALIDATED"
)

// Registration joins a user to an event. The composite unique index is the
// storage-level guarantee that a pair books at most once; the booking
// service relies on it rather than on a prior existence read.
type Registration struct {
	gorm.Model
	UserID  uint `gorm:"not null;uniqueIndex:idx_user_event" json:"user_id"`
	EventID uint `gorm:"not null;uniqueIndex:idx_user_event" json:"event_id"`

	Status RegistrationStatus `gorm:"default:REGISTERED" json:"status"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Event Event `gorm:"foreignKey:EventID" json:"-"`
}
