package creditcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/internal/observability/metrics"
	"credit-gateway/internal/repository"
)

// DefaultMaxAge is how long a stored assessment is reused before the bureau
// is queried again.
const DefaultMaxAge = 30 * 24 * time.Hour

// Assessor produces a credit assessment for a DNI.
type Assessor interface {
	GetQuickCreditAssessment(ctx context.Context, dni string) (*entity.CreditAssessment, error)
}

// RecheckResult summarises one RecheckStale batch.
type RecheckResult struct {
	Checked int
	Failed  int
	Skipped int
}

// Service performs client credit checks and persists their outcome.
type Service struct {
	Repo     repository.ClientRepository
	Assessor Assessor
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// PerformCreditCheck assesses the client's DNI through the gateway and stores
// the result on the client record.
func (s *Service) PerformCreditCheck(ctx context.Context, clientID int64) (entity.CreditInfo, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return entity.CreditInfo{}, err
	}
	return s.check(ctx, client)
}

// Client returns the client record together with its stored assessment.
func (s *Service) Client(ctx context.Context, clientID int64) (*entity.Client, error) {
	return s.load(ctx, clientID)
}

// EnsureFresh returns the stored assessment when it is younger than maxAge
// and runs a new credit check otherwise.
func (s *Service) EnsureFresh(ctx context.Context, clientID int64, maxAge time.Duration) (entity.CreditInfo, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return entity.CreditInfo{}, err
	}
	if !client.NeedsCreditCheck(s.now(), maxAge) {
		return *client.Credit, nil
	}
	return s.check(ctx, client)
}

// RecheckStale re-assesses up to batch clients whose last check is older than
// maxAge. A failing client is counted and the batch continues; only context
// cancellation or a listing error aborts it.
func (s *Service) RecheckStale(ctx context.Context, maxAge time.Duration, batch int) (RecheckResult, error) {
	var res RecheckResult

	clients, err := s.Repo.ListStaleCreditChecks(ctx, s.now().Add(-maxAge), batch)
	if err != nil {
		return res, fmt.Errorf("list stale credit checks: %w", err)
	}

	for _, c := range clients {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !c.CanPerformCreditCheck() {
			res.Skipped++
			continue
		}
		if _, err := s.check(ctx, c); err != nil {
			res.Failed++
			s.logger().Warn("credit recheck failed",
				slog.Int64("client_id", c.ID),
				slog.String("error_kind", entity.KindOf(err).String()),
				slog.Any("error", err))
			continue
		}
		res.Checked++
	}

	s.logger().Info("credit recheck batch finished",
		slog.Int("candidates", len(clients)),
		slog.Int("checked", res.Checked),
		slog.Int("failed", res.Failed),
		slog.Int("skipped", res.Skipped))
	return res, nil
}

func (s *Service) load(ctx context.Context, clientID int64) (*entity.Client, error) {
	client, err := s.Repo.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (s *Service) check(ctx context.Context, client *entity.Client) (entity.CreditInfo, error) {
	if !client.CanPerformCreditCheck() {
		return entity.CreditInfo{}, ErrCreditCheckNotAllowed
	}

	assessment, err := s.Assessor.GetQuickCreditAssessment(ctx, client.DocumentNumber)
	if err != nil {
		metrics.RecordClientCreditCheck(false)
		return entity.CreditInfo{}, err
	}

	info, err := entity.NewCreditInfo(assessment)
	if err != nil {
		return entity.CreditInfo{}, fmt.Errorf("encode assessment: %w", err)
	}
	if err := s.Repo.UpdateCreditInfo(ctx, client.ID, info); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.CreditInfo{}, ErrClientNotFound
		}
		metrics.RecordClientCreditCheck(false)
		return entity.CreditInfo{}, fmt.Errorf("update credit info: %w", err)
	}
	metrics.RecordClientCreditCheck(true)

	s.logger().Info("client credit check stored",
		slog.Int64("client_id", client.ID),
		slog.String("evaluation", string(info.Evaluation)),
		slog.Int("score", info.Score))
	return info, nil
}
