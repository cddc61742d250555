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

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "cashier_id", "starting_float", "start_time", "end_time", "cash_out_amount", "status",
	})
}

func TestCashSessionRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCashSessionRepository(db)

	startTime := time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cash_sessions WHERE id = $1")).
		WithArgs("sess-1").
		WillReturnRows(sessionRows().
			AddRow("sess-1", "cashier-1", "5000", startTime, nil, nil, models.CashSessionOpen))

	session, err := repo.FindByID(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "cashier-1", session.CashierID)
	require.True(t, decimal.NewFromInt(5000).Equal(session.StartingFloat))
	require.Nil(t, session.CashOutAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashSessionRepositoryListByDateBounds(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCashSessionRepository(db)

	dayStart := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cash_sessions WHERE start_time >= $1 AND start_time < $2 ORDER BY start_time ASC")).
		WithArgs(dayStart, dayStart.Add(24*time.Hour)).
		WillReturnRows(sessionRows().
			AddRow("sess-1", "cashier-1", "5000", dayStart.Add(8*time.Hour), nil, nil, models.CashSessionOpen).
			AddRow("sess-2", "cashier-2", "3000", dayStart.Add(13*time.Hour), nil, nil, models.CashSessionOpen))

	sessions, err := repo.ListByDate(context.Background(), dateonly.Date{Year: 2024, Month: 3, Day: 15})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashSessionRepositoryOpenDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCashSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cash_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	session := &models.CashDrawerSession{CashierID: "cashier-1", StartingFloat: decimal.NewFromInt(5000)}
	require.NoError(t, repo.Open(context.Background(), session))
	require.NotEmpty(t, session.ID)
	require.Equal(t, models.CashSessionOpen, session.Status)
	require.False(t, session.StartTime.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashSessionRepositoryClose(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCashSessionRepository(db)

	endTime := time.Date(2024, time.March, 15, 17, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cash_sessions SET status = $1, cash_out_amount = $2, end_time = $3 WHERE id = $4 AND status = $5")).
		WithArgs(models.CashSessionClosed, decimal.NewFromInt(17400), endTime, "sess-1", models.CashSessionOpen).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Close(context.Background(), "sess-1", decimal.NewFromInt(17400), endTime))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashSessionRepositoryCloseAlreadyClosed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCashSessionRepository(db)

	endTime := time.Date(2024, time.March, 15, 17, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cash_sessions SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Close(context.Background(), "sess-1", decimal.NewFromInt(17400), endTime)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not open")
	require.NoError(t, mock.ExpectationsWereMet())
}
