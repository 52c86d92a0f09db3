package request

import (
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// BillItemRequest is one line punched on a KOT
type BillItemRequest struct {
	MenuItemID   uuid.UUID        `json:"item_id" binding:"required"`
	Qty          int              `json:"qty"`
	Rate         *decimal.Decimal `json:"rate"`
	IsNC         bool             `json:"is_nc"`
	Instructions string           `json:"instructions" binding:"max=500"`
}

// CustomerRequest carries the optional guest details of an order
type CustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Name       string     `json:"customer_name" binding:"max=150"`
	Mobile     string     `json:"customer_mobile" binding:"max=20"`
	Address    string     `json:"customer_address"`
}

// CreateBillRequest opens a bill with its first KOT
type CreateBillRequest struct {
	OutletID     *uuid.UUID        `json:"outlet_id"`
	TableID      *uuid.UUID        `json:"table_id"`
	DepartmentID *uuid.UUID        `json:"department_id"`
	OrderType    enum.OrderType    `json:"order_type"`
	Pax          int               `json:"pax" binding:"gte=0"`
	Customer     CustomerRequest   `json:"customer"`
	Items        []BillItemRequest `json:"items" binding:"dive"`
}

// DiscountRequest is a percentage or flat discount
type DiscountRequest struct {
	Type   enum.DiscountType `json:"discount_type"`
	Value  decimal.Decimal   `json:"discount_value"`
	Reason string            `json:"reason" binding:"max=255"`
}

// NCRequest names who a no-charge bill is for
type NCRequest struct {
	Name    string `json:"nc_name" binding:"max=150"`
	Purpose string `json:"nc_purpose" binding:"max=255"`
}

// CreateKOTRequest punches a KOT on an existing bill, the table's active
// bill or a new bill
type CreateKOTRequest struct {
	CreateBillRequest
	BillID   *uuid.UUID       `json:"bill_id"`
	Discount *DiscountRequest `json:"discount"`
	NC       *NCRequest       `json:"nc"`
}

// ReverseLineRequest cancels qty of an item punched on a KOT
type ReverseLineRequest struct {
	MenuItemID   uuid.UUID  `json:"item_id" binding:"required"`
	KOTNo        int        `json:"kot_no"`
	BillDetailID *uuid.UUID `json:"bill_detail_id"`
	Qty          int        `json:"qty"`
	Reason       string     `json:"reason" binding:"max=255"`
}

// ReverseKOTRequest cancels lines of a bill
type ReverseKOTRequest struct {
	BillID  uuid.UUID            `json:"bill_id" binding:"required"`
	Version *int64               `json:"version"`
	Reason  string               `json:"reason" binding:"max=255"`
	Lines   []ReverseLineRequest `json:"items" binding:"required,min=1,dive"`
}

// ApplyDiscountRequest applies or clears a bill discount
type ApplyDiscountRequest struct {
	BillID  uuid.UUID `json:"bill_id" binding:"required"`
	Version *int64    `json:"version"`
	DiscountRequest
}

// SetNCRequest toggles the no-charge designation of a bill
type SetNCRequest struct {
	BillID  uuid.UUID `json:"bill_id" binding:"required"`
	Version *int64    `json:"version"`
	IsNC    bool      `json:"is_nc"`
	NCRequest
}

// BillVersionRequest carries the optional version of a bill action
type BillVersionRequest struct {
	Version *int64 `json:"version"`
}

// PaymentRequest is one tender of a settlement
type PaymentRequest struct {
	PaymentModeID *uuid.UUID      `json:"payment_mode_id"`
	PaymentMode   string          `json:"payment_mode" binding:"max=100"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference" binding:"max=100"`
}

// SettleRequest settles a bill
type SettleRequest struct {
	BillID   uuid.UUID        `json:"bill_id" binding:"required"`
	Version  *int64           `json:"version"`
	Payments []PaymentRequest `json:"settlements" binding:"dive"`
}

// ReverseBillRequest reverses a bill. The approval token may also be sent
// in the X-Approval-Token header.
type ReverseBillRequest struct {
	BillID        uuid.UUID `json:"bill_id" binding:"required"`
	Version       *int64    `json:"version"`
	Reason        string    `json:"reason" binding:"required,max=255"`
	ApprovalToken string    `json:"approval_token"`
}

// TransferTableRequest moves an active bill to another table
type TransferTableRequest struct {
	BillID  uuid.UUID `json:"bill_id" binding:"required"`
	TableID uuid.UUID `json:"table_id" binding:"required"`
	Version *int64    `json:"version"`
}
