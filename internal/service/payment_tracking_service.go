package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

var two = decimal.NewFromInt(2)

// PaymentTrackingConfig tunes grace-period defaults.
type PaymentTrackingConfig struct {
	// DefaultFreeDays is the grace-period length used when neither the
	// enrollment nor its payment history carries one.
	DefaultFreeDays int
	// EndingSoonThreshold marks a grace period as ending soon when this many
	// days or fewer remain.
	EndingSoonThreshold int
}

// PaymentTrackingService derives access decisions from enrollment payment
// state. All methods are pure given their inputs: the caller supplies "now",
// so repeated evaluation during a long session stays deterministic.
type PaymentTrackingService struct {
	cfg    PaymentTrackingConfig
	logger *zap.Logger
}

// NewPaymentTrackingService constructs the service with sane defaults.
func NewPaymentTrackingService(cfg PaymentTrackingConfig, logger *zap.Logger) *PaymentTrackingService {
	if cfg.DefaultFreeDays <= 0 {
		cfg.DefaultFreeDays = 7
	}
	if cfg.EndingSoonThreshold <= 0 {
		cfg.EndingSoonThreshold = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentTrackingService{cfg: cfg, logger: logger}
}

// Resolve computes the access decision for one enrollment at the given
// instant. Comparisons are calendar-day based: "now" is truncated to its
// local date before any date math, so the grace-period boundary is inclusive
// of the whole end day.
func (s *PaymentTrackingService) Resolve(enrollment models.Enrollment, now time.Time) models.PaymentTrackingInfo {
	today := dateonly.FromTime(now)

	switch enrollment.PaymentStatus.CardProgram() {
	case models.FreeCard:
		// Free cards always have access; no date math is performed.
		return models.PaymentTrackingInfo{
			CanAccess:              true,
			Status:                 models.TrackingStatusFreeCard,
			Message:                "free card enrollment, access always granted",
			PaymentTrackingEnabled: enrollment.TrackingEnabled(),
			PaidAmount:             enrollment.PaidAmount,
		}
	case models.HalfCard:
		return s.resolveHalfCard(enrollment)
	}

	if len(enrollment.PaymentHistory) == 0 {
		if enrollment.PaymentStatus == models.PaymentStatusPaid {
			return s.resolveWithoutHistory(enrollment, today)
		}
		info := models.PaymentTrackingInfo{
			CanAccess:              false,
			Status:                 models.TrackingStatusNoPayment,
			Message:                "no payment recorded",
			NextPaymentDate:        enrollment.NextPaymentDate,
			PaymentTrackingEnabled: enrollment.TrackingEnabled(),
			PaidAmount:             enrollment.PaidAmount,
		}
		return info
	}

	return s.resolveFromHistory(enrollment, today)
}

// resolveHalfCard grants access once half of the total fee has been paid.
func (s *PaymentTrackingService) resolveHalfCard(enrollment models.Enrollment) models.PaymentTrackingInfo {
	halfFee := enrollment.TotalFee.Div(two)
	if enrollment.PaidAmount.GreaterThanOrEqual(halfFee) {
		return models.PaymentTrackingInfo{
			CanAccess:              true,
			Status:                 models.TrackingStatusHalfCardPaid,
			Message:                "half card fee settled",
			PaymentTrackingEnabled: enrollment.TrackingEnabled(),
			PaidAmount:             enrollment.PaidAmount,
			RequiredAmount:         halfFee,
		}
	}
	return models.PaymentTrackingInfo{
		CanAccess:              false,
		Status:                 models.TrackingStatusHalfPaymentRequired,
		Message:                fmt.Sprintf("half card requires %s, paid %s", halfFee.StringFixed(2), enrollment.PaidAmount.StringFixed(2)),
		PaymentTrackingEnabled: enrollment.TrackingEnabled(),
		PaidAmount:             enrollment.PaidAmount,
		RequiredAmount:         halfFee,
	}
}

// resolveWithoutHistory synthesizes a grace window for enrollments marked
// paid before any payment event was recorded. The billing cycle is calendar
// aligned: when the enrollment carries no due date, the next payment falls on
// the 1st of the month following now.
func (s *PaymentTrackingService) resolveWithoutHistory(enrollment models.Enrollment, today dateonly.Date) models.PaymentTrackingInfo {
	freeDays := s.freeDays(enrollment, nil)
	next := s.nextPaymentDate(enrollment, nil, today)
	enabled := enrollment.TrackingEnabled()

	info := models.PaymentTrackingInfo{
		NextPaymentDate:        &next,
		FreeDaysUsed:           freeDays,
		PaymentTrackingEnabled: enabled,
		PaidAmount:             enrollment.PaidAmount,
	}

	if !enabled {
		// No grace window: access holds only until the due date.
		grace := next
		info.GracePeriodEndDate = &grace
		if today.Before(next) {
			info.CanAccess = true
			info.Status = models.TrackingStatusPaid
			info.DaysUntilPayment = today.DaysUntil(next)
			info.Message = fmt.Sprintf("paid, next payment due %s", next)
			return info
		}
		info.Status = models.TrackingStatusPaymentRequired
		info.Message = "payment due, tracking grace disabled"
		return info
	}

	grace := next.AddDays(freeDays)
	info.GracePeriodEndDate = &grace
	if !today.After(grace) {
		info.CanAccess = true
		info.Status = models.TrackingStatusPaid
		info.DaysRemaining = today.DaysUntil(grace)
		if today.Before(next) {
			info.DaysUntilPayment = today.DaysUntil(next)
		}
		info.Message = fmt.Sprintf("paid, grace period ends %s", grace)
		return info
	}

	info.Status = models.TrackingStatusPaymentRequired
	info.Message = "grace period expired"
	return info
}

// resolveFromHistory evaluates the most recent payment event, falling back
// to enrollment-level defaults for fields the entry does not carry.
func (s *PaymentTrackingService) resolveFromHistory(enrollment models.Enrollment, today dateonly.Date) models.PaymentTrackingInfo {
	last := enrollment.LatestPayment()
	freeDays := s.freeDays(enrollment, last)
	next := s.nextPaymentDate(enrollment, last, today)

	enabled := enrollment.TrackingEnabled()
	if last.PaymentTrackingEnabled != nil {
		enabled = *last.PaymentTrackingEnabled
	}

	grace := next
	if enabled {
		grace = next.AddDays(freeDays)
	}

	info := models.PaymentTrackingInfo{
		NextPaymentDate:        &next,
		GracePeriodEndDate:     &grace,
		FreeDaysUsed:           freeDays,
		PaymentTrackingEnabled: enabled,
		PaidAmount:             enrollment.PaidAmount,
	}

	if today.After(grace) {
		info.Status = models.TrackingStatusPaymentRequired
		info.Message = "grace period expired"
		return info
	}

	info.CanAccess = true
	info.DaysRemaining = today.DaysUntil(grace)

	if today.Before(next) {
		info.Status = models.TrackingStatusPaid
		info.DaysUntilPayment = today.DaysUntil(next)
		info.Message = fmt.Sprintf("paid, next payment due %s", next)
		return info
	}

	info.Status = models.TrackingStatusPaymentRequired
	info.EndingSoon = info.DaysRemaining <= s.cfg.EndingSoonThreshold
	if info.EndingSoon {
		info.Message = fmt.Sprintf("payment due, grace period ends in %d day(s)", info.DaysRemaining)
	} else {
		info.Message = fmt.Sprintf("payment due, %d day(s) of grace remaining", info.DaysRemaining)
	}
	return info
}

// StatusView combines the enrollment lifecycle status with the payment
// decision. Suspended, completed and dropped take precedence over payment
// state; only active enrollments surface payment-derived statuses.
func (s *PaymentTrackingService) StatusView(enrollment models.Enrollment, now time.Time) models.EnrollmentStatusView {
	view := models.EnrollmentStatusView{
		EnrollmentID: enrollment.ID,
		StudentID:    enrollment.StudentID,
		ClassID:      enrollment.ClassID,
		Tracking:     s.Resolve(enrollment, now),
	}

	switch enrollment.Status {
	case models.EnrollmentStatusSuspended:
		view.Status = models.ViewStatusSuspended
		view.Message = "enrollment suspended"
	case models.EnrollmentStatusCompleted:
		view.Status = models.ViewStatusCompleted
		view.Message = "class completed"
	case models.EnrollmentStatusDropped:
		view.Status = models.ViewStatusDropped
		view.Message = "enrollment dropped"
	case models.EnrollmentStatusActive:
		view.Status = viewStatusFromTracking(view.Tracking)
		view.Message = view.Tracking.Message
	default:
		view.Status = models.ViewStatusUnknown
		view.Message = "unknown enrollment status"
	}
	return view
}

// CountPaymentRequired resolves the enrollment set and counts entries whose
// access is currently denied. Used by summary dashboards.
func (s *PaymentTrackingService) CountPaymentRequired(enrollments []models.Enrollment, now time.Time) int {
	count := 0
	for _, enrollment := range enrollments {
		if !s.Resolve(enrollment, now).CanAccess {
			count++
		}
	}
	return count
}

func viewStatusFromTracking(info models.PaymentTrackingInfo) models.ViewStatus {
	switch info.Status {
	case models.TrackingStatusFreeCard:
		return models.ViewStatusFreeCard
	case models.TrackingStatusHalfCardPaid:
		return models.ViewStatusHalfCardPaid
	case models.TrackingStatusHalfPaymentRequired:
		return models.ViewStatusHalfPaymentRequired
	}
	if !info.CanAccess {
		return models.ViewStatusPaymentRequired
	}
	return models.ViewStatusActive
}

// freeDays resolves the grace-period length: history entry first, then the
// enrollment, then the configured default.
func (s *PaymentTrackingService) freeDays(enrollment models.Enrollment, last *models.PaymentEvent) int {
	if last != nil && last.FreeDays != nil && *last.FreeDays >= 0 {
		return *last.FreeDays
	}
	if enrollment.PaymentTrackingFreeDays > 0 {
		return enrollment.PaymentTrackingFreeDays
	}
	return s.cfg.DefaultFreeDays
}

// nextPaymentDate resolves the due date: history entry, enrollment field,
// else the 1st of the month following today.
func (s *PaymentTrackingService) nextPaymentDate(enrollment models.Enrollment, last *models.PaymentEvent, today dateonly.Date) dateonly.Date {
	if last != nil && last.NextPaymentDate != nil && !last.NextPaymentDate.IsZero() {
		return *last.NextPaymentDate
	}
	if enrollment.NextPaymentDate != nil && !enrollment.NextPaymentDate.IsZero() {
		return *enrollment.NextPaymentDate
	}
	return today.FirstOfNextMonth()
}
