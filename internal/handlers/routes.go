package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/morgana-orum/portal-api/internal/auth"
)

type Handlers struct {
	Auth            *auth.AuthHandler
	Events          *EventHandler
	News            *NewsHandler
	Booking         *BookingHandler
	Representatives *RepresentativeHandler
	Notifications   *NotificationHandler
	Categories      *CategoryHandler
	Uploads         *UploadHandler
	UploadDir       string
	EnableCORS      bool
}

func RegisterRoutes(r *chi.Mux, h *Handlers) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if h.EnableCORS {
		r.Use(corsMiddleware)
	}

	// Initialize Huma API
	config := huma.DefaultConfig("Morgana Orum Portal API", "2.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth
	huma.Post(api, "/auth/signup", h.Auth.HandleSignup)
	huma.Post(api, "/auth/login", h.Auth.HandleLogin)
	huma.Get(api, "/me", h.Auth.HandleMe, secured)

	// Public content
	huma.Get(api, "/events", h.Events.HandleList)
	huma.Get(api, "/events/{id}", h.Events.HandleGet)
	huma.Get(api, "/news", h.News.HandleList)
	huma.Get(api, "/news/{id}", h.News.HandleGet)
	huma.Get(api, "/representatives", h.Representatives.HandleList)
	huma.Get(api, "/representatives/{id}", h.Representatives.HandleGet)
	huma.Get(api, "/notifications", h.Notifications.HandleList)
	huma.Get(api, "/categories/events", h.Categories.HandleEventCategories)
	huma.Get(api, "/categories/news", h.Categories.HandleNewsCategories)

	// Booking
	huma.Post(api, "/events/{id}/book", h.Booking.HandleBook, secured)
	huma.Delete(api, "/events/{id}/booking", h.Booking.HandleCancel, secured)
	huma.Get(api, "/dashboard", h.Booking.HandleDashboard, secured)

	// Admin back office
	huma.Get(api, "/admin/events", h.Events.HandleAdminList, secured)
	huma.Post(api, "/admin/events", h.Events.HandleCreate, secured)
	huma.Put(api, "/admin/events/{id}", h.Events.HandleUpdate, secured)
	huma.Delete(api, "/admin/events/{id}", h.Events.HandleDelete, secured)
	huma.Post(api, "/admin/events/{id}/duplicate", h.Events.HandleDuplicate, secured)
	huma.Get(api, "/admin/events/{id}/attendance", h.Booking.HandleAttendance, secured)
	huma.Put(api, "/admin/events/{id}/attendance/{registrationId}", h.Booking.HandleUpdateAttendance, secured)

	huma.Get(api, "/admin/news", h.News.HandleAdminList, secured)
	huma.Post(api, "/admin/news", h.News.HandleCreate, secured)
	huma.Put(api, "/admin/news/{id}", h.News.HandleUpdate, secured)
	huma.Delete(api, "/admin/news/{id}", h.News.HandleDelete, secured)
	huma.Post(api, "/admin/news/{id}/duplicate", h.News.HandleDuplicate, secured)

	huma.Post(api, "/admin/representatives", h.Representatives.HandleCreate, secured)
	huma.Put(api, "/admin/representatives/{id}", h.Representatives.HandleUpdate, secured)
	huma.Delete(api, "/admin/representatives/{id}", h.Representatives.HandleDelete, secured)

	// Uploads are multipart and served raw through chi.
	r.Post("/admin/uploads", h.Uploads.HandleUpload)
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.UploadDir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)
}

func secured(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
