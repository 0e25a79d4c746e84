package notifier

import "context"

// NoOpNotifier is used when alerting is disabled so callers need no nil checks.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyBreakerStateChange does nothing and returns nil.
func (n *NoOpNotifier) NotifyBreakerStateChange(ctx context.Context, event BreakerEvent) error {
	return nil
}
