// Package booking implements the per-event registration lifecycle: the
// ordered booking preconditions, cancellation, and the UI-facing result
// type both produce.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/morgana-orum/portal-api/internal/cache"
	"github.com/morgana-orum/portal-api/internal/mailer"
	"github.com/morgana-orum/portal-api/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Reason discriminates why a booking operation was rejected.
type Reason string

const (
	ReasonOK                Reason = "OK"
	ReasonUserNotFound      Reason = "USER_NOT_FOUND"
	ReasonEventNotFound     Reason = "EVENT_NOT_FOUND"
	ReasonBookingClosed     Reason = "BOOKING_CLOSED"
	ReasonBookingNotStarted Reason = "BOOKING_NOT_STARTED"
	ReasonBookingEnded      Reason = "BOOKING_ENDED"
	ReasonAlreadyRegistered Reason = "ALREADY_REGISTERED"
	ReasonNotRegistered     Reason = "NOT_REGISTERED"
)

// Result is returned to the rendering layer on both success and rejection;
// Message is shown to the user as-is.
type Result struct {
	OK      bool
	Reason  Reason
	Message string
}

func reject(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}

type Service struct {
	db     *gorm.DB
	mailer mailer.Mailer
	views  *cache.ViewCache
	log    *zerolog.Logger

	// now is swappable for booking-window tests.
	now func() time.Time

	wg sync.WaitGroup
}

func NewService(db *gorm.DB, m mailer.Mailer, views *cache.ViewCache, log *zerolog.Logger) *Service {
	return &Service{db: db, mailer: m, views: views, log: log, now: time.Now}
}

// Book registers the user for the event. Preconditions run in a fixed
// order, each with its own rejection; a non-nil error means the store
// failed and the handler should answer with a generic failure.
func (s *Service) Book(ctx context.Context, userEmail string, eventID uint) (Result, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", userEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ReasonUserNotFound, "Utente non trovato"), nil
		}
		return Result{}, err
	}

	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ReasonEventNotFound, "Evento non trovato"), nil
		}
		return Result{}, err
	}

	now := s.now()
	if !event.BookingOpen {
		return reject(ReasonBookingClosed, "Le prenotazioni per questo evento non sono disponibili"), nil
	}
	if event.BookingStart != nil && now.Before(*event.BookingStart) {
		msg := fmt.Sprintf("Le prenotazioni aprono il %s", event.BookingStart.Format("02/01/2006 15:04"))
		return reject(ReasonBookingNotStarted, msg), nil
	}
	if event.BookingEnd != nil && now.After(*event.BookingEnd) {
		return reject(ReasonBookingEnded, "Le prenotazioni per questo evento sono chiuse"), nil
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ?", user.ID, event.ID).
		Count(&existing).Error; err != nil {
		return Result{}, err
	}
	if existing > 0 {
		return reject(ReasonAlreadyRegistered, "Sei già iscritto a questo evento"), nil
	}

	registration := models.Registration{
		UserID:  user.ID,
		EventID: event.ID,
		Status:  models.RegistrationRegistered,
	}
	if err := s.db.WithContext(ctx).Create(&registration).Error; err != nil {
		// Two concurrent books race past the count above; the composite
		// unique index is the real guard.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return reject(ReasonAlreadyRegistered, "Sei già iscritto a questo evento"), nil
		}
		return Result{}, err
	}

	s.sendConfirmation(user, event)

	s.views.Invalidate(cache.DashboardTag(user.ID))
	s.views.Invalidate(cache.EventTag(event.ID))

	s.log.Info().
		Uint("user_id", user.ID).
		Uint("event_id", event.ID).
		Msg("registration created")

	return Result{OK: true, Reason: ReasonOK, Message: "Iscrizione completata"}, nil
}

// Cancel removes the (user, event) registration. The row is deleted
// outright; a later re-booking starts from a clean state.
func (s *Service) Cancel(ctx context.Context, userEmail string, eventID uint) (Result, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", userEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ReasonUserNotFound, "Utente non trovato"), nil
		}
		return Result{}, err
	}

	var registration models.Registration
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", user.ID, eventID).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ReasonNotRegistered, "Non risulti iscritto a questo evento"), nil
		}
		return Result{}, err
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(&registration).Error; err != nil {
		return Result{}, err
	}

	s.views.Invalidate(cache.DashboardTag(user.ID))
	s.views.Invalidate(cache.EventTag(eventID))

	s.log.Info().
		Uint("user_id", user.ID).
		Uint("event_id", eventID).
		Msg("registration cancelled")

	return Result{OK: true, Reason: ReasonOK, Message: "Iscrizione annullata"}, nil
}

// sendConfirmation fires the booking confirmation email without blocking
// the booking response; failures are only logged.
func (s *Service) sendConfirmation(user models.User, event models.Event) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		subject := fmt.Sprintf("Iscrizione confermata: %s", event.Title)
		body := fmt.Sprintf("<p>Ciao %s,</p><p>la tua iscrizione all'evento <b>%s</b> del %s è confermata.</p>",
			user.Name, event.Title, event.StartDate.Format("02/01/2006"))
		brand := string(primaryBrand(event.AssociationList()))
		if err := s.mailer.Send(user.Email, subject, body, brand); err != nil {
			s.log.Warn().Err(err).Str("to", user.Email).Msg("confirmation email failed")
		}
	}()
}

// Flush waits for in-flight confirmation emails; used at shutdown and in
// tests.
func (s *Service) Flush() {
	s.wg.Wait()
}

func primaryBrand(set models.AssociationSet) models.Association {
	if len(set) == 0 || set.Contains(models.CentralAssociation) {
		return models.CentralAssociation
	}
	return set[0]
}
