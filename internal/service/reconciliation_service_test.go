package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
)

type fakeTransactionReader struct {
	bySession map[string][]models.Transaction
	byDate    map[string][]models.Transaction
	err       error
}

func (f *fakeTransactionReader) ListBySession(_ context.Context, sessionID string) ([]models.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySession[sessionID], nil
}

func (f *fakeTransactionReader) ListByDate(_ context.Context, date dateonly.Date) ([]models.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDate[date.String()], nil
}

type fakeSessionReader struct {
	sessions map[string]*models.CashDrawerSession
	byDate   map[string][]models.CashDrawerSession
}

func (f *fakeSessionReader) FindByID(_ context.Context, id string) (*models.CashDrawerSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return session, nil
}

func (f *fakeSessionReader) ListByDate(_ context.Context, date dateonly.Date) ([]models.CashDrawerSession, error) {
	return f.byDate[date.String()], nil
}

type fakeEnrollmentLister struct {
	enrollments []models.Enrollment
}

func (f *fakeEnrollmentLister) ListActive(_ context.Context) ([]models.Enrollment, error) {
	return f.enrollments, nil
}

func newReconciliationService(txs *fakeTransactionReader, sessions *fakeSessionReader, enrollments activeEnrollmentLister) *ReconciliationService {
	return NewReconciliationService(
		txs,
		sessions,
		enrollments,
		NewTransactionAggregator(NewCardClassifier()),
		NewPaymentTrackingService(PaymentTrackingConfig{}, nil),
		nil,
		nil,
		nil,
		ReconciliationConfig{},
	)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestBuildExpectedClosingIsOpeningPlusCollections(t *testing.T) {
	svc := newReconciliationService(nil, nil, nil)
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	session := &models.CashDrawerSession{
		ID:            "s1",
		StartingFloat: decimal.NewFromInt(5000),
		Status:        models.CashSessionOpen,
	}
	report := svc.Build(session, []models.Transaction{
		{ID: "t1", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(2500)},
		{ID: "t2", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(2500)},
	}, nil, now)

	assert.Equal(t, "s1", report.SessionID)
	assert.True(t, report.OpeningBalance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, report.TotalCollections.Equal(decimal.NewFromInt(5000)))
	assert.True(t, report.ExpectedClosingBalance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, report.ExpectedClosingBalance.Equal(report.OpeningBalance.Add(report.TotalCollections)))
}

func TestBuildNilSessionMeansZeroOpeningBalance(t *testing.T) {
	svc := newReconciliationService(nil, nil, nil)
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	report := svc.Build(nil, []models.Transaction{
		{ID: "t1", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(1000)},
	}, nil, now)

	assert.Empty(t, report.SessionID)
	assert.True(t, report.OpeningBalance.IsZero())
	assert.True(t, report.ExpectedClosingBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, report.Variance.IsZero())
}

func TestBuildVarianceFromCountedCash(t *testing.T) {
	svc := newReconciliationService(nil, nil, nil)
	now := time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC)

	session := &models.CashDrawerSession{
		ID:            "s1",
		StartingFloat: decimal.NewFromInt(5000),
		CashOutAmount: decPtr(9800),
		Status:        models.CashSessionClosed,
	}
	report := svc.Build(session, []models.Transaction{
		{ID: "t1", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(5000)},
	}, nil, now)

	// Drawer counted 9800 against an expected 10000: shortage of 200.
	assert.True(t, report.CashDrawerBalance.Equal(decimal.NewFromInt(9800)))
	assert.True(t, report.Variance.Equal(decimal.NewFromInt(-200)))
}

func TestBuildOpenSessionDrawerDefaultsToExpected(t *testing.T) {
	svc := newReconciliationService(nil, nil, nil)
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	session := &models.CashDrawerSession{
		ID:            "s1",
		StartingFloat: decimal.NewFromInt(2000),
		Status:        models.CashSessionOpen,
	}
	report := svc.Build(session, []models.Transaction{
		{ID: "t1", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(3000)},
	}, nil, now)

	assert.True(t, report.CashDrawerBalance.Equal(report.ExpectedClosingBalance))
	assert.True(t, report.Variance.IsZero())
}

func TestBuildIsIdempotent(t *testing.T) {
	svc := newReconciliationService(nil, nil, nil)
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	session := &models.CashDrawerSession{ID: "s1", StartingFloat: decimal.NewFromInt(1000)}
	txs := []models.Transaction{
		{ID: "t1", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(2500)},
		{ID: "t2", ClassID: "c2", PaymentType: models.PaymentTypeAdmissionFee, Amount: decimal.NewFromInt(1000)},
	}

	first := svc.Build(session, txs, nil, now)
	second := svc.Build(session, txs, nil, now)

	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
	assert.True(t, first.TotalCollections.Equal(second.TotalCollections))
	assert.True(t, first.Variance.Equal(second.Variance))
	assert.Equal(t, first.ReceiptCount, second.ReceiptCount)
	assert.Equal(t, first.UniqueTransactionCount, second.UniqueTransactionCount)
}

func TestBuildCountsPaymentRequiredEnrollments(t *testing.T) {
	svc := newReconciliationService(nil, nil, nil)
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	enrollments := []models.Enrollment{
		{ID: "e1", Status: models.EnrollmentStatusActive, PaymentStatus: models.PaymentStatusOverdue},
		{ID: "e2", Status: models.EnrollmentStatusActive, PaymentStatus: models.PaymentStatusPending},
		{ID: "e3", Status: models.EnrollmentStatusActive, PaymentStatus: models.PaymentStatusPaid,
			PaymentHistory: []models.PaymentEvent{{Date: dateonly.New(2024, time.March, 1)}}},
	}

	report := svc.Build(nil, nil, enrollments, now)
	// e2 has no payment recorded; e3 paid March 1st and the synthesized
	// April 1st due date is still ahead. e1 is a free card, always granted.
	assert.Equal(t, 1, report.PaymentRequiredCount)
}

func TestSessionReportLoadsFromRepositories(t *testing.T) {
	txs := &fakeTransactionReader{bySession: map[string][]models.Transaction{
		"s1": {
			{ID: "t1", ClassID: "c1", ClassName: "Physics", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(2500)},
			{ID: "t2", ClassID: "c1", ClassName: "Physics", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.Zero},
		},
	}}
	sessions := &fakeSessionReader{sessions: map[string]*models.CashDrawerSession{
		"s1": {ID: "s1", StartingFloat: decimal.NewFromInt(3000), Status: models.CashSessionOpen},
	}}
	svc := newReconciliationService(txs, sessions, &fakeEnrollmentLister{})
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC) }

	report, err := svc.SessionReport(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", report.SessionID)
	assert.True(t, report.ExpectedClosingBalance.Equal(decimal.NewFromInt(5500)))
	assert.Equal(t, 2, report.ReceiptCount)
	assert.Equal(t, 1, report.CardTotals.Free.Count)
	require.Len(t, report.PerClass, 1)
	assert.Equal(t, "Physics", report.PerClass[0].ClassName)
}

func TestSessionReportUnknownSession(t *testing.T) {
	svc := newReconciliationService(&fakeTransactionReader{}, &fakeSessionReader{}, nil)

	_, err := svc.SessionReport(context.Background(), "missing")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSessionReportRequiresID(t *testing.T) {
	svc := newReconciliationService(nil, nil, nil)

	_, err := svc.SessionReport(context.Background(), "")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDailyReportCombinesSessions(t *testing.T) {
	date := dateonly.New(2024, time.March, 10)
	txs := &fakeTransactionReader{byDate: map[string][]models.Transaction{
		date.String(): {
			{ID: "t1", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(4000)},
		},
	}}
	sessions := &fakeSessionReader{byDate: map[string][]models.CashDrawerSession{
		date.String(): {
			{ID: "s1", StartingFloat: decimal.NewFromInt(1000), CashOutAmount: decPtr(3000), Status: models.CashSessionClosed},
			{ID: "s2", StartingFloat: decimal.NewFromInt(2000), CashOutAmount: decPtr(4100), Status: models.CashSessionClosed},
		},
	}}
	svc := newReconciliationService(txs, sessions, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC) }

	report, err := svc.DailyReport(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, date, report.ReportDate)
	assert.True(t, report.OpeningBalance.Equal(decimal.NewFromInt(3000)))
	assert.True(t, report.ExpectedClosingBalance.Equal(decimal.NewFromInt(7000)))
	assert.True(t, report.CashDrawerBalance.Equal(decimal.NewFromInt(7100)))
	assert.True(t, report.Variance.Equal(decimal.NewFromInt(100)))
}

func TestDailyReportNoSessions(t *testing.T) {
	date := dateonly.New(2024, time.March, 11)
	svc := newReconciliationService(&fakeTransactionReader{}, &fakeSessionReader{}, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC) }

	report, err := svc.DailyReport(context.Background(), date)
	require.NoError(t, err)
	assert.True(t, report.OpeningBalance.IsZero())
	assert.True(t, report.TotalCollections.IsZero())
	assert.True(t, report.Variance.IsZero())
}

func TestCombineSessionsSkipsUncountedCash(t *testing.T) {
	combined := combineSessions([]models.CashDrawerSession{
		{ID: "s1", StartingFloat: decimal.NewFromInt(1000), Status: models.CashSessionOpen},
		{ID: "s2", StartingFloat: decimal.NewFromInt(500), Status: models.CashSessionOpen},
	})

	require.NotNil(t, combined)
	assert.True(t, combined.StartingFloat.Equal(decimal.NewFromInt(1500)))
	assert.Nil(t, combined.CashOutAmount)
	assert.Equal(t, models.CashSessionOpen, combined.Status)
}
