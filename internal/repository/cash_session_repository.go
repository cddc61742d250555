package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

// CashSessionRepository persists cash drawer session snapshots. Lifecycle
// transitions are driven by the counter workflow; reports only read them.
type CashSessionRepository struct {
	db *sqlx.DB
}

// NewCashSessionRepository constructs the repository.
func NewCashSessionRepository(db *sqlx.DB) *CashSessionRepository {
	return &CashSessionRepository{db: db}
}

const sessionColumns = `id, cashier_id, starting_float, start_time, end_time, cash_out_amount, status`

// FindByID returns one session snapshot.
func (r *CashSessionRepository) FindByID(ctx context.Context, id string) (*models.CashDrawerSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM cash_sessions WHERE id = $1`, sessionColumns)
	var session models.CashDrawerSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindOpenByCashier returns the cashier's open session, if any.
func (r *CashSessionRepository) FindOpenByCashier(ctx context.Context, cashierID string) (*models.CashDrawerSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM cash_sessions WHERE cashier_id = $1 AND status = $2 ORDER BY start_time DESC LIMIT 1`, sessionColumns)
	var session models.CashDrawerSession
	if err := r.db.GetContext(ctx, &session, query, cashierID, models.CashSessionOpen); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByDate returns every session whose shift started on the given day.
func (r *CashSessionRepository) ListByDate(ctx context.Context, date dateonly.Date) ([]models.CashDrawerSession, error) {
	dayStart := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := fmt.Sprintf(`SELECT %s FROM cash_sessions WHERE start_time >= $1 AND start_time < $2 ORDER BY start_time ASC`, sessionColumns)
	var sessions []models.CashDrawerSession
	if err := r.db.SelectContext(ctx, &sessions, query, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("list sessions by date: %w", err)
	}
	return sessions, nil
}

// Open inserts a new open session with the given starting float.
func (r *CashSessionRepository) Open(ctx context.Context, session *models.CashDrawerSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartTime.IsZero() {
		session.StartTime = time.Now().UTC()
	}
	session.Status = models.CashSessionOpen
	const query = `INSERT INTO cash_sessions (id, cashier_id, starting_float, start_time, status)
VALUES (:id, :cashier_id, :starting_float, :start_time, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("open cash session: %w", err)
	}
	return nil
}

// Close records the counted cash and marks the session closed.
func (r *CashSessionRepository) Close(ctx context.Context, id string, cashOut decimal.Decimal, endTime time.Time) error {
	const query = `UPDATE cash_sessions SET status = $1, cash_out_amount = $2, end_time = $3 WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, models.CashSessionClosed, cashOut, endTime, id, models.CashSessionOpen)
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("close cash session: session %s not open", id)
	}
	return nil
}
