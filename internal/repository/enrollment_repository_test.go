package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func enrollmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "class_id", "class_name", "status", "payment_status",
		"total_fee", "paid_amount", "next_payment_date", "tracking_enabled", "tracking_free_days",
	})
}

func historyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "enrollment_id", "paid_on", "amount", "next_payment_date", "free_days", "tracking_enabled",
	})
}

func TestEnrollmentRepositoryFindByIDLoadsHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, class_id, class_name, status, payment_status, total_fee, paid_amount, next_payment_date, tracking_enabled, tracking_free_days FROM enrollments WHERE id = $1")).
		WithArgs("enr-1").
		WillReturnRows(enrollmentRows().
			AddRow("enr-1", "stu-1", "class-1", "Physics", models.EnrollmentStatusActive, models.PaymentStatusPaid, "5000", "5000", nil, nil, 7))

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollment_payments WHERE enrollment_id = ANY($1) ORDER BY paid_on ASC, id ASC")).
		WithArgs(pq.Array([]string{"enr-1"})).
		WillReturnRows(historyRows().
			AddRow("pay-1", "enr-1", "2024-02-01", "2500", nil, nil, nil).
			AddRow("pay-2", "enr-1", "2024-03-01", "2500", "2024-04-01", 7, nil))

	enrollment, err := repo.FindByID(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Len(t, enrollment.PaymentHistory, 2)
	// Most recent entry last.
	require.Equal(t, "pay-2", enrollment.PaymentHistory[1].ID)
	require.NotNil(t, enrollment.PaymentHistory[1].NextPaymentDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE status = $1 ORDER BY id ASC")).
		WithArgs(models.EnrollmentStatusActive).
		WillReturnRows(enrollmentRows().
			AddRow("enr-1", "stu-1", "class-1", "Physics", models.EnrollmentStatusActive, models.PaymentStatusPaid, "5000", "5000", nil, nil, 0).
			AddRow("enr-2", "stu-2", "class-1", "Physics", models.EnrollmentStatusActive, models.PaymentStatusPartial, "5000", "2500", nil, nil, 0))

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollment_payments WHERE enrollment_id = ANY($1)")).
		WithArgs(pq.Array([]string{"enr-1", "enr-2"})).
		WillReturnRows(historyRows())

	enrollments, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.Empty(t, enrollments[0].PaymentHistory)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByClassEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE class_id = $1 ORDER BY id ASC")).
		WithArgs("class-9").
		WillReturnRows(enrollmentRows())

	enrollments, err := repo.ListByClass(context.Background(), "class-9")
	require.NoError(t, err)
	require.Empty(t, enrollments)
	require.NoError(t, mock.ExpectationsWereMet())
}
