package models

import (
	"gorm.io/gorm"
)

// NotificationType tags what kind of content a notification points at.
type NotificationType string

const (
	NotificationNews  NotificationType = "NEWS"
	NotificationEvent NotificationType = "EVENT"
)

// Notification is the persisted in-app record of a publish. Append-only.
type Notification struct {
	gorm.Model
	Title   string           `gorm:"not null" json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `gorm:"not null" json:"type"`
	Link    string           `json:"link"`
}
