package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
)

// PaymentType categorises a transaction.
type PaymentType string

// Transaction categories. Only class payments and admission fees are tracked
// by reconciliation; everything else is ignored by the aggregator.
const (
	PaymentTypeClassPayment PaymentType = "class_payment"
	PaymentTypeAdmissionFee PaymentType = "admission_fee"
	PaymentTypeOther        PaymentType = "other"
)

// CardType classifies a class payment by discount card.
type CardType string

// Card types.
const (
	CardTypeFull CardType = "full"
	CardTypeHalf CardType = "half"
	CardTypeFree CardType = "free"
)

// Transaction is one collected payment as recorded at the counter.
type Transaction struct {
	ID            string          `db:"id" json:"id"`
	SessionID     string          `db:"session_id" json:"session_id"`
	EnrollmentID  string          `db:"enrollment_id" json:"enrollment_id,omitempty"`
	ClassID       string          `db:"class_id" json:"class_id"`
	ClassName     string          `db:"class_name" json:"class_name"`
	Teacher       string          `db:"teacher" json:"teacher"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentType   PaymentType     `db:"payment_type" json:"payment_type"`
	CardType      CardType        `db:"card_type" json:"card_type,omitempty"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	MethodDetails string          `db:"method_details" json:"method_details,omitempty"`
	Date          dateonly.Date   `db:"paid_on" json:"date"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// PaymentMethodDetail is the embedded payment-method blob some rows carry.
type PaymentMethodDetail struct {
	Method    string `json:"method"`
	Reference string `json:"reference,omitempty"`
	Bank      string `json:"bank,omitempty"`
}

// MethodDetail parses the embedded method blob. Malformed payloads are
// ignored rather than propagated; the second return reports success.
func (t Transaction) MethodDetail() (PaymentMethodDetail, bool) {
	if t.MethodDetails == "" {
		return PaymentMethodDetail{}, false
	}
	var detail PaymentMethodDetail
	if err := json.Unmarshal([]byte(t.MethodDetails), &detail); err != nil {
		return PaymentMethodDetail{}, false
	}
	return detail, true
}

// TransactionFilter provides filters for listing transactions.
type TransactionFilter struct {
	SessionID   string
	ClassID     string
	PaymentType PaymentType
	Date        *dateonly.Date
	Page        int
	PageSize    int
}
