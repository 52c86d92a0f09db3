package enum

// OrderType is how the order is served
type OrderType string

const (
	OrderTypeDineIn    OrderType = "DINE_IN"
	OrderTypePickup    OrderType = "PICKUP"
	OrderTypeDelivery  OrderType = "DELIVERY"
	OrderTypeQuickBill OrderType = "QUICK_BILL"
)

// IsValid reports whether t is a known order type
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypePickup, OrderTypeDelivery, OrderTypeQuickBill:
		return true
	}
	return false
}

// NeedsTable reports whether orders of this type are seated at a table
func (t OrderType) NeedsTable() bool {
	return t == OrderTypeDineIn
}
