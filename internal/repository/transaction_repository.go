package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

// TransactionRepository persists counter receipts.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository constructs the repository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, session_id, enrollment_id, class_id, class_name, teacher, amount, payment_type, card_type, notes, method_details, paid_on, created_at`

// Create inserts one transaction row with generated defaults.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO transactions (id, session_id, enrollment_id, class_id, class_name, teacher, amount, payment_type, card_type, notes, method_details, paid_on, created_at)
VALUES (:id, :session_id, :enrollment_id, :class_id, :class_name, :teacher, :amount, :payment_type, :card_type, :notes, :method_details, :paid_on, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListBySession returns every receipt recorded under a drawer session.
func (r *TransactionRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE session_id = $1 ORDER BY created_at ASC`, transactionColumns)
	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session transactions: %w", err)
	}
	return transactions, nil
}

// ListByDate returns every receipt dated on the given calendar day.
func (r *TransactionRepository) ListByDate(ctx context.Context, date dateonly.Date) ([]models.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE paid_on = $1 ORDER BY created_at ASC`, transactionColumns)
	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, date); err != nil {
		return nil, fmt.Errorf("list transactions by date: %w", err)
	}
	return transactions, nil
}

// List returns receipts matching the filter with pagination metadata.
func (r *TransactionRepository) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, *models.Pagination, error) {
	var conditions []string
	var args []interface{}

	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.PaymentType != "" {
		conditions = append(conditions, fmt.Sprintf("payment_type = $%d", len(args)+1))
		args = append(args, filter.PaymentType)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("paid_on = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM transactions%s ORDER BY created_at DESC LIMIT %d OFFSET %d`, transactionColumns, clause, size, offset)
	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list transactions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, nil, fmt.Errorf("count transactions: %w", err)
	}

	return transactions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
