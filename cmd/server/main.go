package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/morgana-orum/portal-api/internal/auth"
	"github.com/morgana-orum/portal-api/internal/booking"
	"github.com/morgana-orum/portal-api/internal/cache"
	"github.com/morgana-orum/portal-api/internal/config"
	"github.com/morgana-orum/portal-api/internal/database"
	"github.com/morgana-orum/portal-api/internal/handlers"
	"github.com/morgana-orum/portal-api/internal/mailer"
	"github.com/morgana-orum/portal-api/internal/notifier"
	"github.com/morgana-orum/portal-api/internal/storage"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Collaborators
	smtpMailer := mailer.NewSMTPMailer(cfg)
	views := cache.NewViewCache()
	uploader := storage.NewUploader(cfg.UploadDir, cfg.BaseURL)

	var announcer notifier.Announcer
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Warn().Err(err).Msg("Discord announcer not initialized")
		} else {
			announcer = notifier.NewDiscordAnnouncer(session, cfg.DiscordAnnounceChannelID)
		}
	}

	dispatcher := notifier.NewDispatcher(db, smtpMailer, announcer, &log, cfg.BaseURL)
	bookingService := booking.NewService(db, smtpMailer, views, &log)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	h := &handlers.Handlers{
		Auth:            authHandler,
		Events:          handlers.NewEventHandler(db, authHandler, dispatcher, views, &log),
		News:            handlers.NewNewsHandler(db, authHandler, dispatcher, &log),
		Booking:         handlers.NewBookingHandler(db, authHandler, bookingService, views, &log),
		Representatives: handlers.NewRepresentativeHandler(db, authHandler, &log),
		Notifications:   handlers.NewNotificationHandler(db),
		Categories:      handlers.NewCategoryHandler(db),
		Uploads:         handlers.NewUploadHandler(authHandler, uploader, &log),
		UploadDir:       cfg.UploadDir,
		EnableCORS:      cfg.EnableCORS,
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, h)

	// Start Server
	log.Info().Str("port", cfg.Port).Msg("Starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
