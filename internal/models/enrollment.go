package models

import (
	"github.com/shopspring/decimal"

	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusSuspended EnrollmentStatus = "suspended"
)

// PaymentStatus is the wire value stored on an enrollment. The values
// "partial" and "overdue" are overloaded by the business to mean the Half
// Card and Free Card discount programs, not literal arrears; use CardProgram
// to read the intent instead of matching the strings.
type PaymentStatus string

// Payment status wire values.
const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// CardProgram names the discount program an enrollment belongs to.
type CardProgram string

// Card programs.
const (
	StandardPayment CardProgram = "standard"
	HalfCard        CardProgram = "half_card"
	FreeCard        CardProgram = "free_card"
)

// CardProgram maps the overloaded wire value onto the named program.
func (p PaymentStatus) CardProgram() CardProgram {
	switch p {
	case PaymentStatusPartial:
		return HalfCard
	case PaymentStatusOverdue:
		return FreeCard
	default:
		return StandardPayment
	}
}

// PaymentEvent is one entry of an enrollment's ordered payment history,
// most recent last. Optional fields override enrollment-level defaults.
type PaymentEvent struct {
	ID                     string          `db:"id" json:"id"`
	EnrollmentID           string          `db:"enrollment_id" json:"enrollment_id"`
	Date                   dateonly.Date   `db:"paid_on" json:"date"`
	Amount                 decimal.Decimal `db:"amount" json:"amount"`
	NextPaymentDate        *dateonly.Date  `db:"next_payment_date" json:"next_payment_date,omitempty"`
	FreeDays               *int            `db:"free_days" json:"free_days,omitempty"`
	PaymentTrackingEnabled *bool           `db:"tracking_enabled" json:"payment_tracking_enabled,omitempty"`
}

// Enrollment captures a student's registration to a class together with its
// payment state. The payment core treats it as read-only input.
type Enrollment struct {
	ID                      string           `db:"id" json:"id"`
	StudentID               string           `db:"student_id" json:"student_id"`
	ClassID                 string           `db:"class_id" json:"class_id"`
	ClassName               string           `db:"class_name" json:"class_name"`
	Status                  EnrollmentStatus `db:"status" json:"status"`
	PaymentStatus           PaymentStatus    `db:"payment_status" json:"payment_status"`
	TotalFee                decimal.Decimal  `db:"total_fee" json:"total_fee"`
	PaidAmount              decimal.Decimal  `db:"paid_amount" json:"paid_amount"`
	NextPaymentDate         *dateonly.Date   `db:"next_payment_date" json:"next_payment_date,omitempty"`
	PaymentTrackingEnabled  *bool            `db:"tracking_enabled" json:"payment_tracking_enabled,omitempty"`
	PaymentTrackingFreeDays int              `db:"tracking_free_days" json:"payment_tracking_free_days"`
	PaymentHistory          []PaymentEvent   `db:"-" json:"payment_history,omitempty"`
}

// LatestPayment returns the most recent payment event, or nil when the
// history is empty.
func (e Enrollment) LatestPayment() *PaymentEvent {
	if len(e.PaymentHistory) == 0 {
		return nil
	}
	return &e.PaymentHistory[len(e.PaymentHistory)-1]
}

// TrackingEnabled resolves the enrollment-level tracking flag, defaulting to
// enabled when the column is absent.
func (e Enrollment) TrackingEnabled() bool {
	if e.PaymentTrackingEnabled == nil {
		return true
	}
	return *e.PaymentTrackingEnabled
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	ClassID   string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
}
