// Package notifier fans out publish notifications: one persisted in-app
// record, best-effort emails to newsletter subscribers, and a best-effort
// Discord announcement. Nothing here may fail the triggering mutation.
package notifier

import (
	"fmt"
	"sync"

	"github.com/morgana-orum/portal-api/internal/mailer"
	"github.com/morgana-orum/portal-api/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Item is the publishable content seen by the dispatcher.
type Item struct {
	Type         models.NotificationType
	ID           uint
	Title        string
	Message      string
	Associations models.AssociationSet
}

type Dispatcher struct {
	db        *gorm.DB
	mailer    mailer.Mailer
	announcer Announcer
	log       *zerolog.Logger
	baseURL   string

	wg sync.WaitGroup
}

func NewDispatcher(db *gorm.DB, m mailer.Mailer, a Announcer, log *zerolog.Logger, baseURL string) *Dispatcher {
	return &Dispatcher{db: db, mailer: m, announcer: a, log: log, baseURL: baseURL}
}

// OnPublish records the publish and spawns the outbound fan-out. Callers
// invoke it exactly on the false-to-true publish transition; it never
// returns an error because the mutation has already committed.
func (d *Dispatcher) OnPublish(item Item) {
	notification := models.Notification{
		Title:   item.Title,
		Message: item.Message,
		Type:    item.Type,
		Link:    d.publicURL(item),
	}
	if err := d.db.Create(&notification).Error; err != nil {
		d.log.Error().Err(err).Uint("item_id", item.ID).Msg("failed to persist notification")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.fanOut(item, notification)
	}()
}

// Flush waits for in-flight fan-outs; used at shutdown and in tests.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

func (d *Dispatcher) fanOut(item Item, notification models.Notification) {
	if d.announcer != nil {
		if err := d.announcer.AnnouncePublish(notification); err != nil {
			d.log.Warn().Err(err).Msg("discord announcement failed")
		}
	}

	var subscribers []models.User
	if err := d.db.Where("newsletter = ?", true).Find(&subscribers).Error; err != nil {
		d.log.Error().Err(err).Msg("failed to load newsletter subscribers")
		return
	}
	if len(subscribers) == 0 {
		return
	}

	subject := fmt.Sprintf("Nuova pubblicazione: %s", item.Title)
	body := fmt.Sprintf("<p>%s</p><p><a href=\"%s\">Leggi sul portale</a></p>", item.Message, notification.Link)
	brand := string(primaryAssociation(item.Associations))

	var mails sync.WaitGroup
	for _, sub := range subscribers {
		mails.Add(1)
		go func(to string) {
			defer mails.Done()
			if err := d.mailer.Send(to, subject, body, brand); err != nil {
				d.log.Warn().Err(err).Str("to", to).Msg("subscriber email failed")
			}
		}(sub.Email)
	}
	mails.Wait()

	d.log.Info().
		Uint("notification_id", notification.ID).
		Int("subscribers", len(subscribers)).
		Msg("publish fan-out complete")
}

// publicURL builds the canonical frontend link for an item, preferring the
// central brand when present.
func (d *Dispatcher) publicURL(item Item) string {
	slug := primaryAssociation(item.Associations).Slug()
	switch item.Type {
	case models.NotificationEvent:
		return fmt.Sprintf("%s/%s/events/%d", d.baseURL, slug, item.ID)
	default:
		return fmt.Sprintf("%s/%s/news/%d", d.baseURL, slug, item.ID)
	}
}

func primaryAssociation(set models.AssociationSet) models.Association {
	if len(set) == 0 || set.Contains(models.CentralAssociation) {
		return models.CentralAssociation
	}
	return set[0]
}
