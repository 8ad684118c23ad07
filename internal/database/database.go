package database

import (
	"log"

	"github.com/morgana-orum/portal-api/internal/config"
	"github.com/morgana-orum/portal-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	// TranslateError turns driver unique-constraint violations into
	// gorm.ErrDuplicatedKey, which the booking service depends on.
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Attachment{},
		&models.Registration{},
		&models.News{},
		&models.Notification{},
		&models.Representative{},
		&models.EventCategory{},
		&models.NewsCategory{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	seedCategories(db)

	return db
}

var defaultEventCategories = []string{"Conferenza", "Workshop", "Sociale", "Sport", "Orientamento"}
var defaultNewsCategories = []string{"Ateneo", "Associazione", "Opportunità", "Bandi"}

func seedCategories(db *gorm.DB) {
	for _, name := range defaultEventCategories {
		db.FirstOrCreate(&models.EventCategory{}, models.EventCategory{Name: name})
	}
	for _, name := range defaultNewsCategories {
		db.FirstOrCreate(&models.NewsCategory{}, models.NewsCategory{Name: name})
	}
}
