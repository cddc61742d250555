package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bawantha395/tcms-app-sub004/internal/dto"
	"github.com/bawantha395/tcms-app-sub004/internal/models"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
)

type enrollmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error)
}

// EnrollmentStatusService resolves payment-derived access state for single
// enrollments and whole class rosters. The evaluation instant is caller
// supplied so a roster rendered at once is evaluated consistently.
type EnrollmentStatusService struct {
	enrollments enrollmentFinder
	tracker     *PaymentTrackingService
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentStatusService constructs the service.
func NewEnrollmentStatusService(enrollments enrollmentFinder, tracker *PaymentTrackingService, logger *zap.Logger) *EnrollmentStatusService {
	if tracker == nil {
		tracker = NewPaymentTrackingService(PaymentTrackingConfig{}, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentStatusService{
		enrollments: enrollments,
		tracker:     tracker,
		logger:      logger,
		now:         time.Now,
	}
}

// Status resolves one enrollment at the given instant. A zero "at" falls back
// to the current time.
func (s *EnrollmentStatusService) Status(ctx context.Context, enrollmentID string, at time.Time) (*models.EnrollmentStatusView, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollmentId is required")
	}
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if at.IsZero() {
		at = s.now()
	}
	view := s.tracker.StatusView(*enrollment, at)
	return &view, nil
}

// StatusByClass resolves every enrollment of a class at one shared instant.
func (s *EnrollmentStatusService) StatusByClass(ctx context.Context, classID string, at time.Time) (*dto.BulkPaymentStatusResponse, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId is required")
	}
	enrollments, err := s.enrollments.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class enrollments")
	}
	if at.IsZero() {
		at = s.now()
	}

	response := &dto.BulkPaymentStatusResponse{
		ClassID:     classID,
		EvaluatedAt: at.UTC().Format(time.RFC3339),
		Items:       make([]models.EnrollmentStatusView, 0, len(enrollments)),
	}
	for _, enrollment := range enrollments {
		view := s.tracker.StatusView(enrollment, at)
		if !view.Tracking.CanAccess {
			response.PaymentRequiredCount++
		}
		response.Items = append(response.Items, view)
	}
	return response, nil
}
