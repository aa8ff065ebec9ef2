package notify

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	crerr "github.com/cockroachdb/errors"
)

type DiscordConfig struct {
	HTTPClient   *http.Client
	WebhookID    string
	WebhookToken string
}

type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSink posts alerts through a channel webhook.
type DiscordSink struct {
	session   webhookExecutor
	webhookID string
	token     string
}

func NewDiscordSink(cfg DiscordConfig) (*DiscordSink, error) {
	if strings.TrimSpace(cfg.WebhookID) == "" || strings.TrimSpace(cfg.WebhookToken) == "" {
		return nil, crerr.New("discord webhook id and token are required")
	}

	// Webhook calls are authenticated by the token in the URL.
	session, err := discordgo.New("")
	if err != nil {
		return nil, crerr.Wrap(err, "create discord session")
	}
	if cfg.HTTPClient != nil {
		session.Client = cfg.HTTPClient
	}

	return &DiscordSink{
		session:   session,
		webhookID: strings.TrimSpace(cfg.WebhookID),
		token:     strings.TrimSpace(cfg.WebhookToken),
	}, nil
}

func (s *DiscordSink) Send(ctx context.Context, message string) error {
	_, err := s.session.WebhookExecute(s.webhookID, s.token, false, &discordgo.WebhookParams{
		Content:         message,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return crerr.Wrap(err, "execute discord webhook")
	}
	return nil
}
