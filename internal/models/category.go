package models

import (
	"gorm.io/gorm"
)

// EventCategory and NewsCategory are lookup tables feeding the admin forms
// and the category listing filters.
type EventCategory struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type NewsCategory struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
