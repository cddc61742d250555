package dto

import (
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest records one receipt row.
type CreateTransactionRequest struct {
	SessionID     string          `json:"sessionId" binding:"required"`
	EnrollmentID  string          `json:"enrollmentId"`
	ClassID       string          `json:"classId"`
	ClassName     string          `json:"className"`
	Teacher       string          `json:"teacher"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentType   string          `json:"paymentType" binding:"required,oneof=class_payment admission_fee other"`
	CardType      string          `json:"cardType" binding:"omitempty,oneof=full half free"`
	Notes         string          `json:"notes"`
	MethodDetails string          `json:"methodDetails"`
	Date          string          `json:"date"`
}

// TransactionListQuery filters the transaction listing.
type TransactionListQuery struct {
	SessionID string `form:"sessionId"`
	Date      string `form:"date"`
	ClassID   string `form:"classId"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit     int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}
