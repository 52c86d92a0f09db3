package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReplaceSettlementRequest replaces the payments of a settled bill
type ReplaceSettlementRequest struct {
	BillID   uuid.UUID        `json:"bill_id" binding:"required"`
	Version  *int64           `json:"version"`
	Payments []PaymentRequest `json:"settlements" binding:"required,min=1,dive"`
}

// DenominationRequest is one counted note or coin value
type DenominationRequest struct {
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count" binding:"gte=0"`
}

// CreateHandoverRequest records a cashier handover
type CreateHandoverRequest struct {
	OutletID      *uuid.UUID            `json:"outlet_id"`
	HandedTo      uuid.UUID             `json:"handed_to" binding:"required"`
	From          *time.Time            `json:"from"`
	To            *time.Time            `json:"to"`
	Denominations []DenominationRequest `json:"denominations" binding:"dive"`
	CountedCash   *decimal.Decimal      `json:"counted_cash"`
	Notes         string                `json:"notes" binding:"max=1000"`
	SendEmail     bool                  `json:"send_email"`
}
