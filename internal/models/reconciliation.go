package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

// ClassAggregate is the per-class rollup of contributing transactions.
// Invariant: FullCount+HalfCount+FreeCount equals the number of class_payment
// rows; admission fees add to the amounts but never to the card counts.
type ClassAggregate struct {
	ClassID            string          `json:"class_id"`
	ClassName          string          `json:"class_name"`
	Teacher            string          `json:"teacher"`
	FullCount          int             `json:"full_count"`
	HalfCount          int             `json:"half_count"`
	FreeCount          int             `json:"free_count"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	AdmissionFeeAmount decimal.Decimal `json:"admission_fee_amount"`
	TransactionCount   int             `json:"transaction_count"`
}

// CardBreakdown pairs a card count with its collected amount.
type CardBreakdown struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// CardTotals breaks grand totals down by card type.
type CardTotals struct {
	Full CardBreakdown `json:"full"`
	Half CardBreakdown `json:"half"`
	Free CardBreakdown `json:"free"`
}

// AggregateTotals are session/day-wide totals across all contributing rows.
type AggregateTotals struct {
	TotalAmount            decimal.Decimal `json:"total_amount"`
	AdmissionFeeAmount     decimal.Decimal `json:"admission_fee_amount"`
	TransactionCount       int             `json:"transaction_count"`
	UniqueTransactionCount int             `json:"unique_transaction_count"`
	Cards                  CardTotals      `json:"cards"`
}

// AggregationResult is the output of reducing a transaction list.
type AggregationResult struct {
	PerClass []ClassAggregate `json:"per_class"`
	Totals   AggregateTotals  `json:"totals"`
}

// ReconciliationReport carries the numbers a cashier/admin reconciliation
// sheet shows. It is a value object: built fresh per request, never mutated.
type ReconciliationReport struct {
	SessionID              string           `json:"session_id,omitempty"`
	ReportDate             dateonly.Date    `json:"report_date"`
	GeneratedAt            time.Time        `json:"generated_at"`
	OpeningBalance         decimal.Decimal  `json:"opening_balance"`
	TotalCollections       decimal.Decimal  `json:"total_collections"`
	ExpectedClosingBalance decimal.Decimal  `json:"expected_closing_balance"`
	CashDrawerBalance      decimal.Decimal  `json:"cash_drawer_balance"`
	Variance               decimal.Decimal  `json:"variance"`
	ReceiptCount           int              `json:"receipt_count"`
	UniqueTransactionCount int              `json:"unique_transaction_count"`
	CardTotals             CardTotals       `json:"card_totals"`
	PerClass               []ClassAggregate `json:"per_class"`
	PaymentRequiredCount   int              `json:"payment_required_count"`
}
