package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

var recordedAt = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

func transactionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "session_id", "enrollment_id", "class_id", "class_name", "teacher",
		"amount", "payment_type", "card_type", "notes", "method_details", "paid_on", "created_at",
	})
}

func TestTransactionRepositoryCreateGeneratesDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTransactionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx := &models.Transaction{
		SessionID:   "sess-1",
		Amount:      decimal.NewFromInt(2500),
		PaymentType: models.PaymentTypeClassPayment,
		CardType:    models.CardTypeFull,
		Date:        dateonly.Date{Year: 2024, Month: 3, Day: 15},
	}
	require.NoError(t, repo.Create(context.Background(), tx))
	require.NotEmpty(t, tx.ID)
	require.False(t, tx.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE session_id = $1 ORDER BY created_at ASC")).
		WithArgs("sess-1").
		WillReturnRows(transactionRows().
			AddRow("tx-1", "sess-1", "enr-1", "class-1", "Physics", "Silva", "2500", models.PaymentTypeClassPayment, models.CardTypeFull, "", "", "2024-03-15", recordedAt).
			AddRow("tx-2", "sess-1", "enr-2", "class-1", "Physics", "Silva", "1250", models.PaymentTypeClassPayment, models.CardTypeHalf, "", "", "2024-03-15", recordedAt.Add(5*time.Minute)))

	transactions, err := repo.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	require.Equal(t, models.CardTypeHalf, transactions[1].CardType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTransactionRepository(db)

	date := dateonly.Date{Year: 2024, Month: 3, Day: 15}
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE paid_on = $1 ORDER BY created_at ASC")).
		WithArgs(date).
		WillReturnRows(transactionRows().
			AddRow("tx-1", "sess-1", "", "", "", "", "1000", models.PaymentTypeAdmissionFee, models.CardTypeFull, "", "", "2024-03-15", recordedAt))

	transactions, err := repo.ListByDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.Equal(t, models.PaymentTypeAdmissionFee, transactions[0].PaymentType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepositoryListPaginates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE session_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("sess-1").
		WillReturnRows(transactionRows().
			AddRow("tx-1", "sess-1", "", "class-1", "Physics", "Silva", "2500", models.PaymentTypeClassPayment, models.CardTypeFull, "", "", "2024-03-15", recordedAt))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions WHERE session_id = $1")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	transactions, pagination, err := repo.List(context.Background(), models.TransactionFilter{SessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.Equal(t, 1, pagination.Page)
	require.Equal(t, 20, pagination.PageSize)
	require.Equal(t, 41, pagination.TotalCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepositoryListClampsPageSize(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions ORDER BY created_at DESC LIMIT 20 OFFSET 20")).
		WillReturnRows(transactionRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, pagination, err := repo.List(context.Background(), models.TransactionFilter{Page: 2, PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, 20, pagination.PageSize)
	require.NoError(t, mock.ExpectationsWereMet())
}
