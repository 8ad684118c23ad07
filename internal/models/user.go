package models

import (
	"gorm.io/gorm"
)

// Role is the portal-wide permission level of a user.
type Role string

const (
	RoleUser         Role = "USER"
	RoleAdminNetwork Role = "ADMIN_NETWORK"
	RoleAdminMorgana Role = "ADMIN_MORGANA"
	RoleSuperAdmin   Role = "SUPER_ADMIN"
)

// IsCentralAdmin reports whether the role manages content of every
// association unconditionally.
func (r Role) IsCentralAdmin() bool {
	return r == RoleAdminMorgana || r == RoleSuperAdmin
}

// IsAdmin reports whether the role has any back-office access at all.
func (r Role) IsAdmin() bool {
	return r == RoleAdminNetwork || r.IsCentralAdmin()
}

type User struct {
	gorm.Model
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Name         string      `json:"name"`
	Surname      string      `json:"surname"`
	Role         Role        `gorm:"default:USER" json:"role"`
	Association  Association `json:"association"`

	Department          string `json:"department"`
	DegreeCourse        string `json:"degree_course"`
	MatriculationNumber string `json:"matriculation_number"`

	Newsletter bool `json:"newsletter"`

	Registrations []Registration `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
