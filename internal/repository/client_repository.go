package repository

import (
	"context"
	"time"

	"credit-gateway/internal/domain/entity"
)

// ClientRepository persists the credit check results stored on client records.
type ClientRepository interface {
	// Get returns the client with id, or nil when it does not exist.
	Get(ctx context.Context, id int64) (*entity.Client, error)
	// ListStaleCreditChecks returns active DNI clients whose last check is
	// missing or older than before, oldest first.
	ListStaleCreditChecks(ctx context.Context, before time.Time, limit int) ([]*entity.Client, error)
	UpdateCreditInfo(ctx context.Context, id int64, info entity.CreditInfo) error
}
