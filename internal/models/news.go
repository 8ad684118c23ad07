package models

import (
	"time"

	"gorm.io/gorm"
)

// News is a publishable article with primary (Italian) and secondary
// (English) language fields.
type News struct {
	gorm.Model
	Title         string `gorm:"not null" json:"title"`
	TitleEn       string `json:"title_en"`
	Description   string `json:"description"`
	DescriptionEn string `json:"description_en"`
	Content       string `json:"content"`
	ContentEn     string `json:"content_en"`

	Category string `json:"category"`
	Tags     string `json:"tags"`
	Image    string `json:"image"`

	PublishDate time.Time `json:"publish_date"`
	Published   bool      `json:"published"`

	Association  Association    `json:"association"`
	Associations AssociationSet `gorm:"type:text" json:"associations"`
}

// AssociationList returns the normalized association set, folding in the
// legacy single tag for pre-migration rows.
func (n *News) AssociationList() AssociationSet {
	return NormalizeAssociations(n.Associations, n.Association)
}
