package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
)

// PaymentsDashboardResponse captures the aggregated payments dashboard payload.
type PaymentsDashboardResponse struct {
	Date                   string                  `json:"date"`
	TotalCollections       decimal.Decimal         `json:"totalCollections"`
	AdmissionFeeAmount     decimal.Decimal         `json:"admissionFeeAmount"`
	ReceiptCount           int                     `json:"receiptCount"`
	UniqueTransactionCount int                     `json:"uniqueTransactionCount"`
	Cards                  models.CardTotals       `json:"cards"`
	PaymentRequiredCount   int                     `json:"paymentRequiredCount"`
	TopClasses             []models.ClassAggregate `json:"topClasses"`
	GeneratedAt            time.Time               `json:"generatedAt"`
}
