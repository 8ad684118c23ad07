// Package queries holds the parameterized listing scopes for news and
// events. Association scoping lives here, at the query layer, so direct
// API calls cannot leak content a network admin must not see.
package queries

import (
	"time"

	"github.com/morgana-orum/portal-api/internal/models"
	"gorm.io/gorm"
)

// Search matches a free-text needle against title and description.
func Search(q string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		needle := "%" + q + "%"
		return db.Where("title LIKE ? OR description LIKE ?", needle, needle)
	}
}

// NewsCategory filters news by exact category.
func NewsCategory(category string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if category == "" {
			return db
		}
		return db.Where("category = ?", category)
	}
}

// EventCategory filters events whose comma-joined category list contains
// the given category.
func EventCategory(category string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if category == "" {
			return db
		}
		return db.Where("(',' || categories || ',') LIKE ?", "%,"+category+",%")
	}
}

// Listing status values accepted by Status.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
)

// Status filters on the publish lifecycle. Scheduled means published but
// with a publish date still in the future.
func Status(status string, now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case StatusPublished:
			return db.Where("published = ? AND publish_date <= ?", true, now)
		case StatusDraft:
			return db.Where("published = ?", false)
		case StatusScheduled:
			return db.Where("published = ? AND publish_date > ?", true, now)
		default:
			return db
		}
	}
}

// Year restricts news to a publication year.
func Year(year int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if year == 0 {
			return db
		}
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		return db.Where("publish_date >= ? AND publish_date < ?", from, to)
	}
}

// Upcoming keeps events whose start date is at or after now.
func Upcoming(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("start_date >= ?", now)
	}
}

// VisibleUnder applies the visibility rule in SQL: the association set
// contains the requested tag, contains the central tag, or is empty (legacy
// rows, shown everywhere). The central scope is the umbrella and lists
// everything unfiltered. The legacy single-tag column is matched too for
// rows written before the set migration.
func VisibleUnder(tag models.Association) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tag == "" || tag == models.CentralAssociation {
			return db
		}
		return db.Where(
			"(',' || associations || ',') LIKE ? OR (',' || associations || ',') LIKE ?"+
				" OR (COALESCE(associations, '') = '' AND (association = ? OR association = ? OR COALESCE(association, '') = ''))",
			"%,"+string(tag)+",%",
			"%,"+string(models.CentralAssociation)+",%",
			tag, models.CentralAssociation,
		)
	}
}

// ScopedForAdmin restricts back-office listings for network admins to
// their own tag or the central tag. Central admins see everything.
func ScopedForAdmin(user *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if user == nil || user.Role != models.RoleAdminNetwork {
			return db
		}
		return VisibleUnder(user.Association)(db)
	}
}
