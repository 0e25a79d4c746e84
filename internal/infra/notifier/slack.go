package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackNotifier posts breaker alerts to a Slack Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	hook        *webhook
	rateLimiter *RateLimiter
}

// NewSlackNotifier creates a SlackNotifier limited to 1 message per second,
// the documented Incoming Webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config: config,
		hook: &webhook{
			service:     "Slack",
			url:         config.WebhookURL,
			httpClient:  &http.Client{Timeout: config.Timeout},
			maxAttempts: webhookMaxAttempts,
			baseDelay:   webhookBaseDelay,
			logger:      slog.Default(),
		},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// SlackWebhookPayload is the Block Kit message body.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
	slackTruncation      = "..."
)

// buildBlockKitPayload renders the alert as a header section plus a context
// line with the transition and its timestamp.
func (s *SlackNotifier) buildBlockKitPayload(event BreakerEvent) SlackWebhookPayload {
	title := headline(event)
	emoji := ":white_check_mark:"
	if event.Opened() {
		emoji = ":rotating_light:"
	}

	section := fmt.Sprintf("%s *%s*\n\n%s", emoji, title, detail(event))
	contextText := fmt.Sprintf("%s → %s • %s", event.From, event.To, event.At.UTC().Format(time.RFC3339))

	return SlackWebhookPayload{
		Text: truncate(title, maxFallbackLength, slackTruncation),
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength, slackTruncation)},
			},
			{
				Type:     "context",
				Elements: []SlackTextObject{{Type: "mrkdwn", Text: contextText}},
			},
		},
	}
}

// NotifyBreakerStateChange implements Notifier.
func (s *SlackNotifier) NotifyBreakerStateChange(ctx context.Context, event BreakerEvent) error {
	if !s.config.Enabled || s.config.WebhookURL == "" {
		return nil
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if err := s.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("circuit", event.Name),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return s.hook.postWithRetry(ctx, event, s.buildBlockKitPayload(event))
}
