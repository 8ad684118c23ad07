package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/morgana-orum/portal-api/internal/auth"
	"github.com/morgana-orum/portal-api/internal/cache"
	"github.com/morgana-orum/portal-api/internal/models"
	"github.com/morgana-orum/portal-api/internal/notifier"
	"github.com/morgana-orum/portal-api/internal/queries"
	"github.com/morgana-orum/portal-api/internal/tenancy"
	"github.com/morgana-orum/portal-api/pkg/validator"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type EventHandler struct {
	db         *gorm.DB
	auth       *auth.AuthHandler
	dispatcher *notifier.Dispatcher
	views      *cache.ViewCache
	log        *zerolog.Logger
}

func NewEventHandler(db *gorm.DB, authHandler *auth.AuthHandler, dispatcher *notifier.Dispatcher, views *cache.ViewCache, log *zerolog.Logger) *EventHandler {
	return &EventHandler{db: db, auth: authHandler, dispatcher: dispatcher, views: views, log: log}
}

type ListEventsInput struct {
	auth.AuthInput
	Search      string `query:"search" required:"false" doc:"Free-text search on title and description"`
	Category    string `query:"category" required:"false"`
	Association string `query:"association" required:"false" doc:"Brand scope to list under"`
	Upcoming    bool   `query:"upcoming" required:"false"`
}

type ListEventsOutput struct {
	Body struct {
		Events []models.Event `json:"events"`
	}
}

// HandleList is the public event listing: published events only, scoped by
// the requested association when one is given.
func (h *EventHandler) HandleList(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	q := h.db.WithContext(ctx).Model(&models.Event{}).
		Where("published = ?", true).
		Scopes(
			queries.Search(input.Search),
			queries.EventCategory(input.Category),
			queries.VisibleUnder(models.Association(input.Association)),
		).
		Order("start_date ASC")
	if input.Upcoming {
		q = q.Scopes(queries.Upcoming(time.Now()))
	}

	var events []models.Event
	if err := q.Preload("Attachments").Find(&events).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list events")
	}

	out := &ListEventsOutput{}
	out.Body.Events = events
	return out, nil
}

type AdminListEventsInput struct {
	auth.AuthInput
	Search   string `query:"search" required:"false"`
	Category string `query:"category" required:"false"`
	Status   string `query:"status" required:"false" enum:"published,draft,scheduled," doc:"Publish lifecycle filter"`
}

// HandleAdminList lists events for the back office. Network admins are
// restricted at the query layer to their own tag or the central tag.
func (h *EventHandler) HandleAdminList(ctx context.Context, input *AdminListEventsInput) (*ListEventsOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	var events []models.Event
	err = h.db.WithContext(ctx).Model(&models.Event{}).
		Scopes(
			queries.Search(input.Search),
			queries.EventCategory(input.Category),
			eventStatus(input.Status),
			queries.ScopedForAdmin(user),
		).
		Order("start_date DESC").
		Preload("Attachments").
		Find(&events).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list events")
	}

	out := &ListEventsOutput{}
	out.Body.Events = events
	return out, nil
}

// eventStatus adapts the shared status filter to events, which gate on the
// start date rather than a publish date.
func eventStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case queries.StatusPublished:
			return db.Where("published = ?", true)
		case queries.StatusDraft:
			return db.Where("published = ?", false)
		case queries.StatusScheduled:
			return db.Where("published = ? AND start_date > ?", true, time.Now())
		default:
			return db
		}
	}
}

type GetEventInput struct {
	ID uint `path:"id"`
}

type GetEventOutput struct {
	Body models.Event
}

// HandleGet serves the public event detail through the view cache; booking
// mutations invalidate the event tag.
func (h *EventHandler) HandleGet(ctx context.Context, input *GetEventInput) (*GetEventOutput, error) {
	key := cache.EventTag(input.ID)
	if cached, ok := h.views.Get(key); ok {
		if event, ok := cached.(models.Event); ok {
			return &GetEventOutput{Body: event}, nil
		}
	}

	var event models.Event
	if err := h.db.WithContext(ctx).Preload("Attachments").First(&event, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load event")
	}
	if !event.Published {
		return nil, huma.Error404NotFound("Event not found")
	}

	h.views.Set(key, event, key)
	return &GetEventOutput{Body: event}, nil
}

// EventPayload is the admin create/update form body.
type EventPayload struct {
	Title          string             `json:"title" validate:"required,max=200"`
	Description    string             `json:"description,omitempty"`
	Details        string             `json:"details,omitempty"`
	StartDate      time.Time          `json:"start_date" validate:"required"`
	EndDate        *time.Time         `json:"end_date,omitempty"`
	Location       string             `json:"location,omitempty"`
	Categories     string             `json:"categories,omitempty" doc:"Comma-joined category names"`
	CFUValue       *float64           `json:"cfu_value,omitempty"`
	CFUType        string             `json:"cfu_type,omitempty"`
	CFUScope       models.CFUScope    `json:"cfu_scope,omitempty"`
	CFUDepartments string             `json:"cfu_departments,omitempty"`
	BookingOpen    bool               `json:"booking_open,omitempty"`
	BookingStart   *time.Time         `json:"booking_start,omitempty"`
	BookingEnd     *time.Time         `json:"booking_end,omitempty"`
	Published      bool               `json:"published,omitempty"`
	Associations   string             `json:"associations" validate:"association" doc:"Comma-joined brand tags"`
	Image          string             `json:"image,omitempty"`
	Attachments    []AttachmentInput  `json:"attachments,omitempty"`
}

type AttachmentInput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (p *EventPayload) apply(event *models.Event) {
	event.Title = p.Title
	event.Description = p.Description
	event.Details = p.Details
	event.StartDate = p.StartDate
	event.EndDate = p.EndDate
	event.Location = p.Location
	event.Categories = p.Categories
	event.CFUValue = p.CFUValue
	event.CFUType = p.CFUType
	event.CFUScope = p.CFUScope
	event.CFUDepartments = p.CFUDepartments
	event.BookingOpen = p.BookingOpen
	event.BookingStart = p.BookingStart
	event.BookingEnd = p.BookingEnd
	event.Published = p.Published
	event.Associations = models.ParseAssociationSet(p.Associations)
	event.Association = ""
	event.Image = p.Image
}

func (p *EventPayload) attachments(eventID uint) []models.Attachment {
	out := make([]models.Attachment, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		out = append(out, models.Attachment{EventID: eventID, Name: a.Name, URL: a.URL})
	}
	return out
}

type CreateEventInput struct {
	auth.AuthInput
	Body EventPayload
}

func (h *EventHandler) HandleCreate(ctx context.Context, input *CreateEventInput) (*GetEventOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(ctx, input.Body); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	set := models.ParseAssociationSet(input.Body.Associations)
	if !tenancy.CapabilitiesFor(user, set).Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	var event models.Event
	input.Body.apply(&event)
	event.Attachments = input.Body.attachments(0)

	if err := h.db.WithContext(ctx).Create(&event).Error; err != nil {
		h.log.Error().Err(err).Msg("failed to create event")
		return nil, huma.Error500InternalServerError("Failed to create event")
	}

	if event.Published {
		h.dispatcher.OnPublish(eventItem(&event))
	}

	return &GetEventOutput{Body: event}, nil
}

type UpdateEventInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body EventPayload
}

func (h *EventHandler) HandleUpdate(ctx context.Context, input *UpdateEventInput) (*GetEventOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(ctx, input.Body); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	var event models.Event
	if err := h.db.WithContext(ctx).First(&event, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load event")
	}

	caps := tenancy.CapabilitiesFor(user, event.AssociationList())
	if !caps.Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}
	newSet := models.ParseAssociationSet(input.Body.Associations)
	if !caps.Reassign && !sameSet(newSet, event.AssociationList()) {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	wasPublished := event.Published
	input.Body.apply(&event)

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		attachments := input.Body.attachments(event.ID)
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", event.ID).Msg("failed to update event")
		return nil, huma.Error500InternalServerError("Failed to update event")
	}

	h.views.Invalidate(cache.EventTag(event.ID))

	// Only the false-to-true transition dispatches; re-saving a published
	// event must not notify again.
	if !wasPublished && event.Published {
		h.dispatcher.OnPublish(eventItem(&event))
	}

	return &GetEventOutput{Body: event}, nil
}

type DeleteEventInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type MessageOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandleDelete removes an event; registrations cascade with it.
func (h *EventHandler) HandleDelete(ctx context.Context, input *DeleteEventInput) (*MessageOutput, error) {
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

	if !tenancy.CapabilitiesFor(user, event.AssociationList()).Delete {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Unscoped().Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Unscoped().Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&event).Error
	})
	if err != nil {
		h.log.Error().Err(err).Uint("event_id", event.ID).Msg("failed to delete event")
		return nil, huma.Error500InternalServerError("Failed to delete event")
	}

	h.views.Invalidate(cache.EventTag(event.ID))

	out := &MessageOutput{}
	out.Body.Message = "Event deleted"
	return out, nil
}

type DuplicateEventInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// HandleDuplicate copies an event as an unpublished draft with bookings
// closed and no registrations.
func (h *EventHandler) HandleDuplicate(ctx context.Context, input *DuplicateEventInput) (*GetEventOutput, error) {
	user, err := h.auth.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.WithContext(ctx).Preload("Attachments").First(&event, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load event")
	}

	if !tenancy.CapabilitiesFor(user, event.AssociationList()).Edit {
		return nil, huma.Error403Forbidden("Forbidden")
	}

	clone := event
	clone.Model = gorm.Model{}
	clone.Title = event.Title + " (copia)"
	clone.Published = false
	clone.BookingOpen = false
	clone.Associations = event.AssociationList()
	clone.Association = ""
	clone.Attachments = nil
	for _, a := range event.Attachments {
		clone.Attachments = append(clone.Attachments, models.Attachment{Name: a.Name, URL: a.URL})
	}

	if err := h.db.WithContext(ctx).Create(&clone).Error; err != nil {
		h.log.Error().Err(err).Uint("event_id", event.ID).Msg("failed to duplicate event")
		return nil, huma.Error500InternalServerError("Failed to duplicate event")
	}

	return &GetEventOutput{Body: clone}, nil
}

func eventItem(event *models.Event) notifier.Item {
	return notifier.Item{
		Type:         models.NotificationEvent,
		ID:           event.ID,
		Title:        event.Title,
		Message:      event.Description,
		Associations: event.AssociationList(),
	}
}

func sameSet(a, b models.AssociationSet) bool {
	if len(a) != len(b) {
		return false
	}
	for _, tag := range a {
		if !b.Contains(tag) {
			return false
		}
	}
	return true
}
