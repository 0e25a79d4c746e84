// Package notifier sends operator alerts when the upstream circuit breaker
// changes state. Slack and Discord webhooks are supported; a no-op notifier
// stands in when no webhook is configured.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// BreakerEvent describes a single circuit breaker transition.
type BreakerEvent struct {
	Name string
	From string
	To   string
	At   time.Time
}

// Opened reports whether the transition tripped the breaker.
func (e BreakerEvent) Opened() bool {
	return e.To == "open"
}

// Notifier delivers breaker alerts.
// Implementations handle rate limiting, retries, and error logging internally.
type Notifier interface {
	// NotifyBreakerStateChange sends one alert for the transition.
	// A non-nil error means every delivery attempt failed.
	NotifyBreakerStateChange(ctx context.Context, event BreakerEvent) error
}

// Multi fans an alert out to several notifiers.
type Multi []Notifier

// NotifyBreakerStateChange delivers to every notifier and joins their errors.
func (m Multi) NotifyBreakerStateChange(ctx context.Context, event BreakerEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyBreakerStateChange(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromWebhooks builds a notifier for the configured webhooks.
// Empty URLs are skipped; with none configured it returns a NoOpNotifier.
func FromWebhooks(slackURL, discordURL string, timeout time.Duration) Notifier {
	var out Multi
	if slackURL != "" {
		out = append(out, NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: slackURL, Timeout: timeout}))
	}
	if discordURL != "" {
		out = append(out, NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: discordURL, Timeout: timeout}))
	}
	switch len(out) {
	case 0:
		return NewNoOpNotifier()
	case 1:
		return out[0]
	default:
		return out
	}
}

// headline and detail are the human-readable parts shared by every channel.
func headline(e BreakerEvent) string {
	switch e.To {
	case "open":
		return fmt.Sprintf("Circuit breaker %s opened", e.Name)
	case "closed":
		return fmt.Sprintf("Circuit breaker %s recovered", e.Name)
	default:
		return fmt.Sprintf("Circuit breaker %s is %s", e.Name, e.To)
	}
}

func detail(e BreakerEvent) string {
	switch e.To {
	case "open":
		return "Upstream calls are being rejected without reaching the credit bureau. Cached assessments are still served."
	case "closed":
		return "A trial call succeeded and upstream traffic has resumed."
	default:
		return fmt.Sprintf("State changed from %s to %s.", e.From, e.To)
	}
}
