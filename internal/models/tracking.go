package models

import (
	"github.com/shopspring/decimal"

	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

// TrackingStatus is the payment-derived access status for one enrollment.
type TrackingStatus string

// Tracking statuses. Denied access is always one of NoPayment,
// PaymentRequired or HalfPaymentRequired.
const (
	TrackingStatusFreeCard            TrackingStatus = "free-card"
	TrackingStatusHalfCardPaid        TrackingStatus = "half-card-paid"
	TrackingStatusHalfPaymentRequired TrackingStatus = "half-payment-required"
	TrackingStatusPaid                TrackingStatus = "paid"
	TrackingStatusPaymentRequired     TrackingStatus = "payment-required"
	TrackingStatusNoPayment           TrackingStatus = "no-payment"
)

// PaymentTrackingInfo is the computed access decision for an enrollment at a
// given instant. It is ephemeral: recomputed on demand, never persisted.
type PaymentTrackingInfo struct {
	CanAccess              bool            `json:"can_access"`
	Status                 TrackingStatus  `json:"status"`
	Message                string          `json:"message,omitempty"`
	DaysRemaining          int             `json:"days_remaining"`
	DaysUntilPayment       int             `json:"days_until_payment,omitempty"`
	EndingSoon             bool            `json:"ending_soon,omitempty"`
	NextPaymentDate        *dateonly.Date  `json:"next_payment_date,omitempty"`
	GracePeriodEndDate     *dateonly.Date  `json:"grace_period_end_date,omitempty"`
	FreeDaysUsed           int             `json:"free_days_used"`
	PaymentTrackingEnabled bool            `json:"payment_tracking_enabled"`
	PaidAmount             decimal.Decimal `json:"paid_amount"`
	RequiredAmount         decimal.Decimal `json:"required_amount"`
}

// ViewStatus is the combined lifecycle + payment status shown per enrollment
// row. Lifecycle states override payment-derived ones.
type ViewStatus string

// View statuses.
const (
	ViewStatusFreeCard            ViewStatus = "free-card"
	ViewStatusHalfCardPaid        ViewStatus = "half-card-paid"
	ViewStatusHalfPaymentRequired ViewStatus = "half-payment-required"
	ViewStatusSuspended           ViewStatus = "suspended"
	ViewStatusCompleted           ViewStatus = "completed"
	ViewStatusDropped             ViewStatus = "dropped"
	ViewStatusPaymentRequired     ViewStatus = "payment-required"
	ViewStatusActive              ViewStatus = "active"
	ViewStatusUnknown             ViewStatus = "unknown"
)

// EnrollmentStatusView combines enrollment lifecycle status with the payment
// tracking decision for presentation.
type EnrollmentStatusView struct {
	EnrollmentID string              `json:"enrollment_id"`
	StudentID    string              `json:"student_id"`
	ClassID      string              `json:"class_id"`
	Status       ViewStatus          `json:"status"`
	Message      string              `json:"message,omitempty"`
	Tracking     PaymentTrackingInfo `json:"tracking"`
}
