package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bawantha395/tcms-app-sub004/internal/dto"
	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
)

type transactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, *models.Pagination, error)
}

type sessionChecker interface {
	FindByID(ctx context.Context, id string) (*models.CashDrawerSession, error)
}

type cacheInvalidator interface {
	InvalidateReports(ctx context.Context)
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// TransactionService records counter receipts and lists them. Recording a
// transaction invalidates cached reports and dashboard summaries so previews
// reflect it immediately.
type TransactionService struct {
	repo       transactionStore
	sessions   sessionChecker
	classifier *CardClassifier
	reports    cacheInvalidator
	dashboard  dashboardInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewTransactionService constructs the service.
func NewTransactionService(
	repo transactionStore,
	sessions sessionChecker,
	classifier *CardClassifier,
	reports cacheInvalidator,
	dashboard dashboardInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TransactionService {
	if classifier == nil {
		classifier = NewCardClassifier()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{
		repo:       repo,
		sessions:   sessions,
		classifier: classifier,
		reports:    reports,
		dashboard:  dashboard,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// Record validates and persists one receipt row. The session must exist and
// still be open; the card type is classified when the caller omits it.
func (s *TransactionService) Record(ctx context.Context, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	session, err := s.sessions.FindByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoActiveSession, "cash drawer session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cash drawer session")
	}
	if session.Status == models.CashSessionClosed {
		return nil, appErrors.ErrSessionClosed
	}

	if req.Amount.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount cannot be negative")
	}

	date := dateonly.FromTime(s.now())
	if req.Date != "" {
		parsed, err := dateonly.Parse(req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		date = parsed
	}

	tx := &models.Transaction{
		SessionID:     req.SessionID,
		EnrollmentID:  req.EnrollmentID,
		ClassID:       req.ClassID,
		ClassName:     req.ClassName,
		Teacher:       req.Teacher,
		Amount:        req.Amount,
		PaymentType:   models.PaymentType(req.PaymentType),
		CardType:      models.CardType(req.CardType),
		Notes:         req.Notes,
		MethodDetails: req.MethodDetails,
		Date:          date,
		CreatedAt:     s.now().UTC(),
	}
	if tx.PaymentType == models.PaymentTypeClassPayment && tx.CardType == "" {
		tx.CardType = s.classifier.Classify(*tx)
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record transaction")
	}

	if tx.PaymentType == models.PaymentTypeClassPayment {
		s.metrics.RecordPayment(string(s.classifier.Classify(*tx)))
	}
	if s.reports != nil {
		s.reports.InvalidateReports(ctx)
	}
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}

	return tx, nil
}

// List returns transactions matching the filter with pagination metadata.
func (s *TransactionService) List(ctx context.Context, query dto.TransactionListQuery) ([]models.Transaction, *models.Pagination, error) {
	filter := models.TransactionFilter{
		SessionID: query.SessionID,
		ClassID:   query.ClassID,
		Page:      query.Page,
		PageSize:  query.Limit,
	}
	if query.Date != "" {
		date, err := dateonly.Parse(query.Date)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		filter.Date = &date
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	transactions, pagination, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transactions")
	}
	return transactions, pagination, nil
}
