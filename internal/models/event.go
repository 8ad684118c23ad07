package models

import (
	"time"

	"gorm.io/gorm"
)

// CFUScope says which students an event's credit value applies to.
type CFUScope string

const (
	CFUScopeAteneo      CFUScope = "ATENEO"
	CFUScopeDepartments CFUScope = "DEPARTMENTS"
)

type Event struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Details     string `json:"details"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Location  string     `json:"location"`

	// Categories is a comma-joined list of one or more category names.
	Categories string `json:"categories"`

	CFUValue       *float64 `json:"cfu_value"`
	CFUType        string   `json:"cfu_type"`
	CFUScope       CFUScope `json:"cfu_scope"`
	CFUDepartments string   `json:"cfu_departments"`

	BookingOpen  bool       `json:"booking_open"`
	BookingStart *time.Time `json:"booking_start"`
	BookingEnd   *time.Time `json:"booking_end"`

	Published bool `json:"published"`

	// Association is the legacy single tag; Associations is the set that
	// governs visibility. Normalize with AssociationList, write only the set.
	Association  Association    `json:"association"`
	Associations AssociationSet `gorm:"type:text" json:"associations"`

	Image       string       `json:"image"`
	Attachments []Attachment `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"attachments"`

	Registrations []Registration `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// AssociationList returns the normalized association set, folding in the
// legacy single tag for pre-migration rows.
func (e *Event) AssociationList() AssociationSet {
	return NormalizeAssociations(e.Associations, e.Association)
}

// Bookable reports whether registrations are accepted at instant now:
// the master flag must be on and now must fall inside the booking window.
func (e *Event) Bookable(now time.Time) bool {
	if !e.BookingOpen {
		return false
	}
	if e.BookingStart != nil && now.Before(*e.BookingStart) {
		return false
	}
	if e.BookingEnd != nil && now.After(*e.BookingEnd) {
		return false
	}
	return true
}

// Attachment is a named file linked to an event.
type Attachment struct {
	gorm.Model
	EventID uint   `gorm:"not null;index" json:"event_id"`
	Name    string `gorm:"not null" json:"name"`
	URL     string `gorm:"not null" json:"url"`
}
