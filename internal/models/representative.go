package models

import (
	"gorm.io/gorm"
)

// Representative is a directory entry for a student representative.
// Department is free text as entered by admins; the permission layer
// matches it against tenant keyword lists.
type Representative struct {
	gorm.Model
	Name       string      `gorm:"not null" json:"name"`
	Surname    string      `gorm:"not null" json:"surname"`
	Email      string      `json:"email"`
	Department string      `json:"department"`
	Position   string      `json:"position"`
	Association Association `json:"association"`
	Image      string      `json:"image"`
}
