package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
)

type reconTransactionReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Transaction, error)
	ListByDate(ctx context.Context, date dateonly.Date) ([]models.Transaction, error)
}

type reconSessionReader interface {
	FindByID(ctx context.Context, id string) (*models.CashDrawerSession, error)
	ListByDate(ctx context.Context, date dateonly.Date) ([]models.CashDrawerSession, error)
}

type activeEnrollmentLister interface {
	ListActive(ctx context.Context) ([]models.Enrollment, error)
}

// ReconciliationConfig tunes report caching.
type ReconciliationConfig struct {
	CacheTTL time.Duration
}

// ReconciliationService builds cash-drawer reconciliation reports. The
// report itself is a value object recomputed per request; only the assembled
// payload is cached, and the cache is invalidated whenever a transaction is
// recorded.
type ReconciliationService struct {
	transactions reconTransactionReader
	sessions     reconSessionReader
	enrollments  activeEnrollmentLister
	aggregator   *TransactionAggregator
	tracker      *PaymentTrackingService
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	now          func() time.Time
	cfg          ReconciliationConfig
}

// NewReconciliationService constructs the service.
func NewReconciliationService(
	transactions reconTransactionReader,
	sessions reconSessionReader,
	enrollments activeEnrollmentLister,
	aggregator *TransactionAggregator,
	tracker *PaymentTrackingService,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ReconciliationConfig,
) *ReconciliationService {
	if aggregator == nil {
		aggregator = NewTransactionAggregator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	return &ReconciliationService{
		transactions: transactions,
		sessions:     sessions,
		enrollments:  enrollments,
		aggregator:   aggregator,
		tracker:      tracker,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
	}
}

// Build combines a session snapshot with transactions and enrollments into
// the report value object. Pure: identical arguments produce an identical
// report, and no input is mutated. A nil session means the drawer was never
// started, so the opening balance is zero.
func (s *ReconciliationService) Build(session *models.CashDrawerSession, transactions []models.Transaction, enrollments []models.Enrollment, now time.Time) models.ReconciliationReport {
	result := s.aggregator.Aggregate(transactions)

	report := models.ReconciliationReport{
		ReportDate:             dateonly.FromTime(now),
		GeneratedAt:            now,
		TotalCollections:       result.Totals.TotalAmount,
		ReceiptCount:           result.Totals.TransactionCount,
		UniqueTransactionCount: result.Totals.UniqueTransactionCount,
		CardTotals:             result.Totals.Cards,
		PerClass:               result.PerClass,
	}

	if session != nil {
		report.SessionID = session.ID
		report.OpeningBalance = session.StartingFloat
	}
	report.ExpectedClosingBalance = report.OpeningBalance.Add(report.TotalCollections)

	if session != nil && session.CashOutAmount != nil {
		report.CashDrawerBalance = *session.CashOutAmount
	} else {
		report.CashDrawerBalance = report.ExpectedClosingBalance
	}
	report.Variance = report.CashDrawerBalance.Sub(report.ExpectedClosingBalance)

	if s.tracker != nil && enrollments != nil {
		report.PaymentRequiredCount = s.tracker.CountPaymentRequired(enrollments, now)
	}

	return report
}

// SessionReport assembles the reconciliation report for one drawer session.
func (s *ReconciliationService) SessionReport(ctx context.Context, sessionID string) (*models.ReconciliationReport, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sessionId is required")
	}

	cacheKey := fmt.Sprintf("recon:session:%s", sessionID)
	if cached, hit := s.tryCache(ctx, cacheKey); hit {
		return cached, nil
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cash drawer session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cash drawer session")
	}

	transactions, err := s.transactions.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session transactions")
	}

	enrollments, err := s.listEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	report := s.Build(session, transactions, enrollments, s.now())
	s.metrics.RecordReportBuilt("session")
	s.persistCache(ctx, cacheKey, &report)
	return &report, nil
}

// DailyReport assembles the day-end report across every session of the day.
// Opening floats and counted cash are summed; when no session of the day has
// been counted out yet, the drawer balance falls back to the expected value.
func (s *ReconciliationService) DailyReport(ctx context.Context, date dateonly.Date) (*models.ReconciliationReport, error) {
	if date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}

	cacheKey := fmt.Sprintf("recon:daily:%s", date)
	if cached, hit := s.tryCache(ctx, cacheKey); hit {
		return cached, nil
	}

	sessions, err := s.sessions.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cash drawer sessions")
	}

	transactions, err := s.transactions.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transactions")
	}

	enrollments, err := s.listEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	report := s.Build(combineSessions(sessions), transactions, enrollments, s.now())
	report.ReportDate = date
	s.metrics.RecordReportBuilt("daily")
	s.persistCache(ctx, cacheKey, &report)
	return &report, nil
}

// InvalidateReports drops cached report payloads. Called after a transaction
// is recorded so the next preview reflects it.
func (s *ReconciliationService) InvalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "recon:*"); err != nil {
		s.logger.Warn("failed to invalidate reconciliation cache", zap.Error(err))
	}
}

func (s *ReconciliationService) listEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	if s.enrollments == nil {
		return nil, nil
	}
	enrollments, err := s.enrollments.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	return enrollments, nil
}

func (s *ReconciliationService) tryCache(ctx context.Context, key string) (*models.ReconciliationReport, bool) {
	if s.cache == nil {
		return nil, false
	}
	var report models.ReconciliationReport
	hit, err := s.cache.Get(ctx, key, &report)
	if err != nil || !hit {
		return nil, false
	}
	return &report, true
}

func (s *ReconciliationService) persistCache(ctx context.Context, key string, report *models.ReconciliationReport) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache reconciliation report", zap.String("key", key), zap.Error(err))
	}
}

// combineSessions folds a day's sessions into one snapshot: floats are
// summed and counted cash is summed when at least one session recorded it.
func combineSessions(sessions []models.CashDrawerSession) *models.CashDrawerSession {
	if len(sessions) == 0 {
		return nil
	}
	if len(sessions) == 1 {
		return &sessions[0]
	}

	combined := models.CashDrawerSession{
		ID:        sessions[0].ID,
		StartTime: sessions[0].StartTime,
		Status:    models.CashSessionOpen,
	}
	var cashOut decimal.Decimal
	counted := false
	closedAll := true
	for _, session := range sessions {
		combined.StartingFloat = combined.StartingFloat.Add(session.StartingFloat)
		if session.CashOutAmount != nil {
			cashOut = cashOut.Add(*session.CashOutAmount)
			counted = true
		}
		if session.Status != models.CashSessionClosed {
			closedAll = false
		}
	}
	if counted {
		combined.CashOutAmount = &cashOut
	}
	if closedAll {
		combined.Status = models.CashSessionClosed
	}
	return &combined
}
