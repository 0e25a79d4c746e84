package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/internal/observability/metrics"
	"credit-gateway/internal/repository"
)

// DBTX is the query surface shared by *sql.DB and the database circuit breaker.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ClientRepo struct{ db DBTX }

func NewClientRepo(db DBTX) repository.ClientRepository {
	return &ClientRepo{db: db}
}

const clientColumns = `id, name, document_type, document_number, status,
       credit_score, risk_classification, total_debts, active_credits, overdue_credits,
       automatic_evaluation, evaluation_justification, suggested_credit_limit,
       last_credit_check, sentinel_data`

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanClient reads one client row. Credit columns are NULL until the first check.
func scanClient(s rowScanner) (*entity.Client, error) {
	var (
		c             entity.Client
		status        string
		score         sql.NullInt64
		risk          sql.NullString
		totalDebts    sql.NullFloat64
		active        sql.NullInt64
		overdue       sql.NullInt64
		evaluation    sql.NullString
		justification sql.NullString
		limit         sql.NullFloat64
		checkedAt     sql.NullTime
		raw           []byte
	)
	if err := s.Scan(
		&c.ID, &c.Name, &c.DocumentType, &c.DocumentNumber, &status,
		&score, &risk, &totalDebts, &active, &overdue,
		&evaluation, &justification, &limit,
		&checkedAt, &raw,
	); err != nil {
		return nil, err
	}
	c.Status = entity.ClientStatus(status)

	if checkedAt.Valid {
		c.Credit = &entity.CreditInfo{
			Score:          int(score.Int64),
			RiskClass:      entity.RiskClass(risk.String),
			TotalDebts:     totalDebts.Float64,
			ActiveCredits:  int(active.Int64),
			OverdueCredits: int(overdue.Int64),
			Evaluation:     entity.Recommendation(evaluation.String),
			Justification:  justification.String,
			SuggestedLimit: limit.Float64,
			CheckedAt:      checkedAt.Time,
			RawData:        raw,
		}
	}
	return &c, nil
}

func (repo *ClientRepo) Get(ctx context.Context, id int64) (*entity.Client, error) {
	defer observe("get_client", time.Now())
	query := `
SELECT ` + clientColumns + `
FROM clients
WHERE id = $1
LIMIT 1`
	c, err := scanClient(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return c, nil
}

func (repo *ClientRepo) ListStaleCreditChecks(ctx context.Context, before time.Time, limit int) ([]*entity.Client, error) {
	defer observe("list_stale_clients", time.Now())
	query := `
SELECT ` + clientColumns + `
FROM clients
WHERE status = 'active'
  AND document_type = 'DNI'
  AND (last_credit_check IS NULL OR last_credit_check < $1)
ORDER BY last_credit_check ASC NULLS FIRST, id ASC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("ListStaleCreditChecks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	clients := make([]*entity.Client, 0, limit)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStaleCreditChecks: Scan: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStaleCreditChecks: %w", err)
	}
	return clients, nil
}

func (repo *ClientRepo) UpdateCreditInfo(ctx context.Context, id int64, info entity.CreditInfo) error {
	defer observe("update_credit_info", time.Now())
	const query = `
UPDATE clients
SET credit_score = $1,
    risk_classification = $2,
    total_debts = $3,
    active_credits = $4,
    overdue_credits = $5,
    automatic_evaluation = $6,
    evaluation_justification = $7,
    suggested_credit_limit = $8,
    last_credit_check = $9,
    sentinel_data = $10,
    updated_at = now()
WHERE id = $11`
	res, err := repo.db.ExecContext(ctx, query,
		info.Score, string(info.RiskClass), info.TotalDebts, info.ActiveCredits, info.OverdueCredits,
		string(info.Evaluation), info.Justification, info.SuggestedLimit,
		info.CheckedAt, []byte(info.RawData), id,
	)
	if err != nil {
		return fmt.Errorf("UpdateCreditInfo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateCreditInfo: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("UpdateCreditInfo: %w", entity.ErrNotFound)
	}
	return nil
}
