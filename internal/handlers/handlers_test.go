package handlers

import (
	"sync"
	"testing"

	"github.com/morgana-orum/portal-api/internal/auth"
	"github.com/morgana-orum/portal-api/internal/booking"
	"github.com/morgana-orum/portal-api/internal/cache"
	"github.com/morgana-orum/portal-api/internal/config"
	"github.com/morgana-orum/portal-api/internal/models"
	"github.com/morgana-orum/portal-api/internal/notifier"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) Send(to, subject, htmlBody, brandTag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type testEnv struct {
	db         *gorm.DB
	auth       *auth.AuthHandler
	dispatcher *notifier.Dispatcher
	booking    *booking.Service
	views      *cache.ViewCache
	mailer     *fakeMailer
	log        zerolog.Logger
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Attachment{},
		&models.Registration{},
		&models.News{},
		&models.Notification{},
		&models.Representative{},
	)

	m := &fakeMailer{}
	log := zerolog.Nop()
	views := cache.NewViewCache()
	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	dispatcher := notifier.NewDispatcher(db, m, nil, &log, "https://portale.example")

	return &testEnv{
		db:         db,
		auth:       authHandler,
		dispatcher: dispatcher,
		booking:    booking.NewService(db, m, views, &log),
		views:      views,
		mailer:     m,
		log:        log,
	}
}

func (e *testEnv) eventHandler() *EventHandler {
	return NewEventHandler(e.db, e.auth, e.dispatcher, e.views, &e.log)
}

func (e *testEnv) newsHandler() *NewsHandler {
	return NewNewsHandler(e.db, e.auth, e.dispatcher, &e.log)
}

func (e *testEnv) bookingHandler() *BookingHandler {
	return NewBookingHandler(e.db, e.auth, e.booking, e.views, &e.log)
}

// createUser inserts a user and returns it with a valid session cookie.
func (e *testEnv) createUser(t *testing.T, email string, role models.Role, assoc models.Association) (models.User, string) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Association:  assoc,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, err := e.auth.GenerateToken(user.Email)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, "auth_token=" + token
}

func (e *testEnv) notificationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	e.db.Model(&models.Notification{}).Count(&count)
	return count
}
