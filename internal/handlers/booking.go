package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/morgana-orum/portal-api/internal/auth"
	"github.com/morgana-orum/portal-api/internal/booking"
	"github.com/morgana-orum/portal-api/internal/cache"
	"github.com/morgana-orum/portal-api/internal/models"
	"github.com/morgana-orum/portal-api/internal/tenancy"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type BookingHandler struct {
	db      *gorm.DB
	auth    *auth.AuthHandler
	booking *booking.Service
	views   *cache.ViewCache
	log     *zerolog.Logger
}

func NewBookingHandler(db *gorm.DB, authHandler *auth.AuthHandler, svc *booking.Service, views *cache.ViewCache, log *zerolog.Logger) *BookingHandler {
	return &BookingHandler{db: db, auth: authHandler, booking: svc, views: views, log: log}
}

type BookEventInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// BookingOutput mirrors the service result: the UI shows Message verbatim
// whether the operation succeeded or was rejected.
type BookingOutput struct {
	Body struct {
		Success bool           `json:"success"`
		Reason  booking.Reason `json:"reason"`
		Message string         `json:"message"`
	}
}

func bookingOutput(result booking.Result) *BookingOutput {
	out := &BookingOutput{}
	out.Body.Success = result.OK
	out.Body.Reason = result.Reason
	out.Body.Message = result.Message
	return out
}

func (h *BookingHandler) HandleBook(ctx context.Context, input *BookEventInput) (*BookingOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	result, err := h.booking.Book(ctx, user.Email, input.ID)
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", input.ID).Msg("booking failed")
		return nil, huma.Error500InternalServerError("Booking failed")
	}
	return bookingOutput(result), nil
}

func (h *BookingHandler) HandleCancel(ctx context.Context, input *BookEventInput) (*BookingOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	result, err := h.booking.Cancel(ctx, user.Email, input.ID)
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", input.ID).Msg("cancellation failed")
		return nil, huma.Error500InternalServerError("Cancellation failed")
	}
	return bookingOutput(result), nil
}

type DashboardInput struct {
	auth.AuthInput
}

type DashboardEntry struct {
	Registration models.Registration `json:"registration"`
	Event        models.Event        `json:"event"`
}

type DashboardOutput struct {
	Body struct {
		Registrations []DashboardEntry `json:"registrations"`
	}
}

// HandleDashboard lists the caller's registrations with event data, served
// through the view cache and invalidated on book/cancel.
func (h *BookingHandler) HandleDashboard(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	key := cache.DashboardTag(user.ID)
	if cached, ok := h.views.Get(key); ok {
		if entries, ok := cached.([]DashboardEntry); ok {
			out := &DashboardOutput{}
			out.Body.Registrations = entries
			return out, nil
		}
	}

	var registrations []models.Registration
	err = h.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Preload("Event").
		Order("created_at DESC").
		Find(&registrations).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load dashboard")
	}

	entries := make([]DashboardEntry, 0, len(registrations))
	for _, r := range registrations {
		entries = append(entries, DashboardEntry{Registration: r, Event: r.Event})
	}

	h.views.Set(key, entries, key)

	out := &DashboardOutput{}
	out.Body.Registrations = entries
	return out, nil
}

type AttendanceInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// AttendanceRow is one line of the attendance export, carrying the academic
// attributes needed for CFU paperwork.
type AttendanceRow struct {
	RegistrationID      uint                      `json:"registration_id"`
	Status              models.RegistrationStatus `json:"status"`
	Email               string                    `json:"email"`
	Name                string                    `json:"name"`
	Surname             string                    `json:"surname"`
	Department          string                    `json:"department"`
	DegreeCourse        string                    `json:"degree_course"`
	MatriculationNumber string                    `json:"matriculation_number"`
	RegisteredAt        string                    `json:"registered_at"`
}

type AttendanceOutput struct {
	Body struct {
		EventID uint            `json:"event_id"`
		Rows    []AttendanceRow `json:"rows"`
	}
}

// HandleAttendance exports an event's registrations for the back office.
func (h *BookingHandler) HandleAttendance(ctx context.Context, input *AttendanceInput) (*AttendanceOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.WithContext(ctx).First(&event, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load event")
	}

	if !tenancy.CapabilitiesFor(user, event.AssociationList()).Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	var registrations []models.Registration
	err = h.db.WithContext(ctx).
		Where("event_id = ?", event.ID).
		Preload("User").
		Order("created_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load registrations")
	}

	out := &AttendanceOutput{}
	out.Body.EventID = event.ID
	for _, r := range registrations {
		out.Body.Rows = append(out.Body.Rows, AttendanceRow{
			RegistrationID:      r.ID,
			Status:              r.Status,
			Email:               r.User.Email,
			Name:                r.User.Name,
			Surname:             r.User.Surname,
			Department:          r.User.Department,
			DegreeCourse:        r.User.DegreeCourse,
			MatriculationNumber: r.User.MatriculationNumber,
			RegisteredAt:        r.CreatedAt.Format("02/01/2006 15:04"),
		})
	}
	return out, nil
}

type UpdateAttendanceInput struct {
	auth.AuthInput
	ID             uint `path:"id"`
	RegistrationID uint `path:"registrationId"`
	Body           struct {
		Status models.RegistrationStatus `json:"status" enum:"REGISTERED,ATTENDED,CFU_VALIDATED"`
	}
}

// HandleUpdateAttendance moves a registration through the attendance and
// CFU-validation states.
func (h *BookingHandler) HandleUpdateAttendance(ctx context.Context, input *UpdateAttendanceInput) (*MessageOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.WithContext(ctx).First(&event, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load event")
	}

	if !tenancy.CapabilitiesFor(user, event.AssociationList()).Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	var registration models.Registration
	err = h.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", input.RegistrationID, event.ID).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Registration not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load registration")
	}

	if err := h.db.WithContext(ctx).Model(&registration).Update("status", input.Body.Status).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update registration")
	}

	out := &MessageOutput{}
	out.Body.Message = "Registration updated"
	return out, nil
}
