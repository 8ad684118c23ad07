package queries

import (
	"testing"
	"time"

	"github.com/morgana-orum/portal-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.News{}, &models.Event{})
	return db
}

func newsTitles(t *testing.T, q *gorm.DB) []string {
	t.Helper()
	var news []models.News
	if err := q.Find(&news).Error; err != nil {
		t.Fatalf("query failed: %v", err)
	}
	titles := make([]string, 0, len(news))
	for _, n := range news {
		titles = append(titles, n.Title)
	}
	return titles
}

func TestVisibleUnder(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	db.Create(&models.News{Title: "health", PublishDate: now, Published: true,
		Associations: models.AssociationSet{models.AssociationUnimhealth}})
	db.Create(&models.News{Title: "central", PublishDate: now, Published: true,
		Associations: models.AssociationSet{models.AssociationScipog, models.CentralAssociation}})
	db.Create(&models.News{Title: "legacy-single", PublishDate: now, Published: true,
		Association: models.AssociationEconomia})
	db.Create(&models.News{Title: "legacy-empty", PublishDate: now, Published: true})

	t.Run("OwnScope", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(VisibleUnder(models.AssociationUnimhealth)))
		if !contains(titles, "health") {
			t.Errorf("expected own-tag item in scope, got %v", titles)
		}
		if !contains(titles, "central") {
			t.Errorf("expected central-tagged item in every scope, got %v", titles)
		}
		if !contains(titles, "legacy-empty") {
			t.Errorf("expected legacy empty-set item in every scope, got %v", titles)
		}
		if contains(titles, "legacy-single") {
			t.Errorf("expected foreign legacy item excluded, got %v", titles)
		}
	})

	t.Run("ForeignScope", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(VisibleUnder(models.AssociationEconomia)))
		if contains(titles, "health") {
			t.Errorf("expected foreign item excluded, got %v", titles)
		}
		if !contains(titles, "legacy-single") {
			t.Errorf("expected legacy single-tag item under its own scope, got %v", titles)
		}
	})

	t.Run("CentralScopeListsEverything", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(VisibleUnder(models.CentralAssociation)))
		if len(titles) != 4 {
			t.Errorf("expected every item under the umbrella scope, got %v", titles)
		}
		if !contains(titles, "health") {
			t.Errorf("expected tenant-tagged item under the umbrella scope, got %v", titles)
		}
	})

	t.Run("NoScopeNoFilter", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(VisibleUnder("")))
		if len(titles) != 4 {
			t.Errorf("expected all 4 items without a scope, got %v", titles)
		}
	})
}

func TestStatusAndYear(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	db.Create(&models.News{Title: "live", Published: true, PublishDate: now.Add(-time.Hour)})
	db.Create(&models.News{Title: "draft", Published: false, PublishDate: now.Add(-time.Hour)})
	db.Create(&models.News{Title: "scheduled", Published: true, PublishDate: now.Add(48 * time.Hour)})
	db.Create(&models.News{Title: "old", Published: true,
		PublishDate: time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)})

	t.Run("Published", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(Status(StatusPublished, now)))
		if !contains(titles, "live") || !contains(titles, "old") {
			t.Errorf("expected live and old, got %v", titles)
		}
		if contains(titles, "draft") || contains(titles, "scheduled") {
			t.Errorf("expected drafts and scheduled excluded, got %v", titles)
		}
	})

	t.Run("Draft", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(Status(StatusDraft, now)))
		if len(titles) != 1 || titles[0] != "draft" {
			t.Errorf("expected only draft, got %v", titles)
		}
	})

	t.Run("Scheduled", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(Status(StatusScheduled, now)))
		if len(titles) != 1 || titles[0] != "scheduled" {
			t.Errorf("expected only scheduled, got %v", titles)
		}
	})

	t.Run("Year", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(Year(2019)))
		if len(titles) != 1 || titles[0] != "old" {
			t.Errorf("expected only the 2019 article, got %v", titles)
		}
	})
}

func TestSearchAndCategories(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	db.Create(&models.News{Title: "Borse di studio", Description: "bando regionale", PublishDate: now, Category: "Bandi"})
	db.Create(&models.News{Title: "Torneo di calcio", Description: "iscrizioni aperte", PublishDate: now, Category: "Associazione"})
	db.Create(&models.Event{Title: "Hackathon", StartDate: now, Categories: "Workshop,Sport"})
	db.Create(&models.Event{Title: "Convegno", StartDate: now, Categories: "Conferenza"})

	t.Run("Search", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(Search("bando")))
		if len(titles) != 1 || titles[0] != "Borse di studio" {
			t.Errorf("expected description match, got %v", titles)
		}
	})

	t.Run("NewsCategory", func(t *testing.T) {
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(NewsCategory("Bandi")))
		if len(titles) != 1 || titles[0] != "Borse di studio" {
			t.Errorf("expected category match, got %v", titles)
		}
	})

	t.Run("EventCategoryInJoinedList", func(t *testing.T) {
		var events []models.Event
		if err := db.Model(&models.Event{}).Scopes(EventCategory("Sport")).Find(&events).Error; err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(events) != 1 || events[0].Title != "Hackathon" {
			t.Errorf("expected comma-list category match, got %d events", len(events))
		}
	})
}

func TestScopedForAdmin(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	db.Create(&models.News{Title: "own", PublishDate: now,
		Associations: models.AssociationSet{models.AssociationEconomia}})
	db.Create(&models.News{Title: "foreign", PublishDate: now,
		Associations: models.AssociationSet{models.AssociationScipog}})
	db.Create(&models.News{Title: "central", PublishDate: now,
		Associations: models.AssociationSet{models.CentralAssociation}})

	t.Run("NetworkAdmin", func(t *testing.T) {
		admin := &models.User{Role: models.RoleAdminNetwork, Association: models.AssociationEconomia}
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(ScopedForAdmin(admin)))
		if !contains(titles, "own") || !contains(titles, "central") {
			t.Errorf("expected own and central items, got %v", titles)
		}
		if contains(titles, "foreign") {
			t.Errorf("expected foreign item excluded at the query layer, got %v", titles)
		}
	})

	t.Run("CentralAdminUnrestricted", func(t *testing.T) {
		admin := &models.User{Role: models.RoleSuperAdmin}
		titles := newsTitles(t, db.Model(&models.News{}).Scopes(ScopedForAdmin(admin)))
		if len(titles) != 3 {
			t.Errorf("expected all items for central admin, got %v", titles)
		}
	})
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
