package dto

import (
	"github.com/bawantha395/tcms-app-sub004/internal/models"
)

// PaymentStatusQuery carries the optional evaluation instant for a single
// enrollment status lookup. At defaults to the current time.
type PaymentStatusQuery struct {
	At string `form:"at"`
}

// BulkPaymentStatusQuery selects a class roster for bulk evaluation.
type BulkPaymentStatusQuery struct {
	ClassID string `form:"classId" binding:"required"`
	At      string `form:"at"`
}

// BulkPaymentStatusResponse carries the resolved views for a class roster.
type BulkPaymentStatusResponse struct {
	ClassID              string                        `json:"classId"`
	EvaluatedAt          string                        `json:"evaluatedAt"`
	Items                []models.EnrollmentStatusView `json:"items"`
	PaymentRequiredCount int                           `json:"paymentRequiredCount"`
}
