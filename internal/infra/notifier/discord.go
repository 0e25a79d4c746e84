package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordNotifier posts breaker alerts to a Discord webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	hook        *webhook
	rateLimiter *RateLimiter
}

// NewDiscordNotifier creates a DiscordNotifier limited to 30 requests per
// minute with a burst of 3.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config: config,
		hook: &webhook{
			service:     "Discord",
			url:         config.WebhookURL,
			httpClient:  &http.Client{Timeout: config.Timeout},
			maxAttempts: webhookMaxAttempts,
			baseDelay:   webhookBaseDelay,
			logger:      slog.Default(),
		},
		rateLimiter: NewRateLimiter(0.5, 3),
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

// DiscordEmbedField is an inline name/value pair.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	discordRed   = 0xED4245
	discordGreen = 0x57F287
	discordAmber = 0xFEE75C
)

func embedColor(to string) int {
	switch to {
	case "open":
		return discordRed
	case "closed":
		return discordGreen
	default:
		return discordAmber
	}
}

// buildEmbedPayload renders the alert as a single embed coloured by the
// target state.
func (d *DiscordNotifier) buildEmbedPayload(event BreakerEvent) DiscordWebhookPayload {
	embed := DiscordEmbed{
		Title:       truncate(headline(event), maxTitleLength, truncationSuffix),
		Description: truncate(detail(event), maxDescriptionLength, truncationSuffix),
		Color:       embedColor(event.To),
		Fields: []DiscordEmbedField{
			{Name: "From", Value: event.From, Inline: true},
			{Name: "To", Value: event.To, Inline: true},
		},
		Footer:    DiscordEmbedFooter{Text: "credit-gateway"},
		Timestamp: event.At.UTC().Format(time.RFC3339),
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// NotifyBreakerStateChange implements Notifier.
func (d *DiscordNotifier) NotifyBreakerStateChange(ctx context.Context, event BreakerEvent) error {
	if !d.config.Enabled || d.config.WebhookURL == "" {
		return nil
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if err := d.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("circuit", event.Name),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return d.hook.postWithRetry(ctx, event, d.buildEmbedPayload(event))
}
