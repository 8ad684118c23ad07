package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/morgana-orum/portal-api/internal/models"
)

// Announcer posts publish announcements to an external channel.
type Announcer interface {
	AnnouncePublish(notification models.Notification) error
}

// DiscordAnnouncer posts to the association's announcement channel.
type DiscordAnnouncer struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordAnnouncer(session *discordgo.Session, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		session:   session,
		channelID: channelID,
	}
}

func (a *DiscordAnnouncer) AnnouncePublish(notification models.Notification) error {
	if a.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if a.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	kind := "Notizia"
	if notification.Type == models.NotificationEvent {
		kind = "Evento"
	}

	message := fmt.Sprintf("📣 **%s pubblicato: %s**\n%s\n%s",
		kind,
		notification.Title,
		notification.Message,
		notification.Link,
	)

	if _, err := a.session.ChannelMessageSend(a.channelID, message); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}

	return nil
}
