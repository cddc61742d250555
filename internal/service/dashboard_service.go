package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bawantha395/tcms-app-sub004/internal/dto"
	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
)

type dashboardTransactionReader interface {
	ListByDate(ctx context.Context, date dateonly.Date) ([]models.Transaction, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL   time.Duration
	ClassLimit int
}

// DashboardService composes the payments dashboard summary from the day's
// transactions and the current enrollment payment state.
type DashboardService struct {
	transactions dashboardTransactionReader
	enrollments  activeEnrollmentLister
	aggregator   *TransactionAggregator
	tracker      *PaymentTrackingService
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
	cfg          DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(
	transactions dashboardTransactionReader,
	enrollments activeEnrollmentLister,
	aggregator *TransactionAggregator,
	tracker *PaymentTrackingService,
	cache *CacheService,
	logger *zap.Logger,
	cfg DashboardServiceConfig,
) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.ClassLimit <= 0 {
		cfg.ClassLimit = 5
	}
	if aggregator == nil {
		aggregator = NewTransactionAggregator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		transactions: transactions,
		enrollments:  enrollments,
		aggregator:   aggregator,
		tracker:      tracker,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
	}
}

// Payments returns the dashboard summary for a calendar day. The boolean
// reports whether the payload was served from cache.
func (s *DashboardService) Payments(ctx context.Context, date dateonly.Date) (*dto.PaymentsDashboardResponse, bool, error) {
	if date.IsZero() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}

	cacheKey := fmt.Sprintf("dash:payments:%s", date)
	if s.cache != nil {
		var cached dto.PaymentsDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	transactions, err := s.transactions.ListByDate(ctx, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transactions")
	}

	result := s.aggregator.Aggregate(transactions)

	topClasses := result.PerClass
	if len(topClasses) > s.cfg.ClassLimit {
		topClasses = topClasses[:s.cfg.ClassLimit]
	}

	summary := &dto.PaymentsDashboardResponse{
		Date:                   date.String(),
		TotalCollections:       result.Totals.TotalAmount,
		AdmissionFeeAmount:     result.Totals.AdmissionFeeAmount,
		ReceiptCount:           result.Totals.TransactionCount,
		UniqueTransactionCount: result.Totals.UniqueTransactionCount,
		Cards:                  result.Totals.Cards,
		TopClasses:             topClasses,
		GeneratedAt:            s.now().UTC(),
	}

	if s.tracker != nil && s.enrollments != nil {
		enrollments, err := s.enrollments.ListActive(ctx)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
		}
		summary.PaymentRequiredCount = s.tracker.CountPaymentRequired(enrollments, s.now())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard summary", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return summary, false, nil
}

// Invalidate drops cached dashboard payloads after a transaction is recorded.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
