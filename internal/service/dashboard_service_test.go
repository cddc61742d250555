package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

func newDashboardService(txs *fakeTransactionReader, enrollments *fakeEnrollmentLister, limit int) *DashboardService {
	return NewDashboardService(
		txs,
		enrollments,
		NewTransactionAggregator(NewCardClassifier()),
		NewPaymentTrackingService(PaymentTrackingConfig{}, nil),
		nil,
		nil,
		DashboardServiceConfig{ClassLimit: limit},
	)
}

func TestPaymentsDashboardSummarises(t *testing.T) {
	date := dateonly.New(2024, time.March, 10)
	txs := &fakeTransactionReader{byDate: map[string][]models.Transaction{
		date.String(): {
			{ID: "t1", ClassID: "c1", ClassName: "Physics", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(2500)},
			{ID: "t2", ClassID: "c2", ClassName: "Maths", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(4000)},
			{ID: "t3", ClassID: "c1", PaymentType: models.PaymentTypeAdmissionFee, Amount: decimal.NewFromInt(1000)},
		},
	}}
	enrollments := &fakeEnrollmentLister{enrollments: []models.Enrollment{
		{ID: "e1", Status: models.EnrollmentStatusActive, PaymentStatus: models.PaymentStatusPending},
	}}
	svc := newDashboardService(txs, enrollments, 5)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	summary, cached, err := svc.Payments(context.Background(), date)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "2024-03-10", summary.Date)
	assert.True(t, summary.TotalCollections.Equal(decimal.NewFromInt(7500)))
	assert.True(t, summary.AdmissionFeeAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 3, summary.ReceiptCount)
	assert.Equal(t, 2, summary.UniqueTransactionCount)
	assert.Equal(t, 1, summary.PaymentRequiredCount)
	require.Len(t, summary.TopClasses, 2)
	assert.Equal(t, "Maths", summary.TopClasses[0].ClassName)
}

func TestPaymentsDashboardLimitsTopClasses(t *testing.T) {
	date := dateonly.New(2024, time.March, 10)
	txs := &fakeTransactionReader{byDate: map[string][]models.Transaction{
		date.String(): {
			{ID: "t1", ClassID: "c1", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(1000)},
			{ID: "t2", ClassID: "c2", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(3000)},
			{ID: "t3", ClassID: "c3", PaymentType: models.PaymentTypeClassPayment, Amount: decimal.NewFromInt(2000)},
		},
	}}
	svc := newDashboardService(txs, &fakeEnrollmentLister{}, 2)

	summary, _, err := svc.Payments(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, summary.TopClasses, 2)
	assert.Equal(t, "c2", summary.TopClasses[0].ClassID)
	assert.Equal(t, "c3", summary.TopClasses[1].ClassID)
}

func TestPaymentsDashboardRequiresDate(t *testing.T) {
	svc := newDashboardService(&fakeTransactionReader{}, nil, 5)

	_, _, err := svc.Payments(context.Background(), dateonly.Date{})
	assert.Error(t, err)
}

func TestPaymentsDashboardEmptyDay(t *testing.T) {
	date := dateonly.New(2024, time.March, 12)
	svc := newDashboardService(&fakeTransactionReader{}, &fakeEnrollmentLister{}, 5)

	summary, _, err := svc.Payments(context.Background(), date)
	require.NoError(t, err)
	assert.True(t, summary.TotalCollections.IsZero())
	assert.Empty(t, summary.TopClasses)
	assert.Equal(t, 0, summary.ReceiptCount)
}
