package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashSessionStatus tracks the drawer session lifecycle.
type CashSessionStatus string

// Session states. Lifecycle transitions are owned by the external drawer
// service; this core reads snapshots.
const (
	CashSessionOpen   CashSessionStatus = "open"
	CashSessionClosed CashSessionStatus = "closed"
)

// CashDrawerSession is a cashier shift snapshot: the opening float put in the
// drawer at start and, once closed, the cash counted out.
type CashDrawerSession struct {
	ID            string            `db:"id" json:"id"`
	CashierID     string            `db:"cashier_id" json:"cashier_id"`
	StartingFloat decimal.Decimal   `db:"starting_float" json:"starting_float"`
	StartTime     time.Time         `db:"start_time" json:"start_time"`
	EndTime       *time.Time        `db:"end_time" json:"end_time,omitempty"`
	CashOutAmount *decimal.Decimal  `db:"cash_out_amount" json:"cash_out_amount,omitempty"`
	Status        CashSessionStatus `db:"status" json:"status"`
}
