package entity

// TicketHeader holds the outlet header printed at the top of a bill.
type TicketHeader struct {
	OutletName string `json:"outlet_name"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	GSTIN      string `json:"gstin,omitempty"`
}

// KOTTicketLine is one item on a kitchen ticket.
type KOTTicketLine struct {
	Name         string `json:"name"`
	Qty          int    `json:"qty"`
	Instructions string `json:"instructions,omitempty"`
}

// KOTTicket is the kitchen-facing payload of a KOT or reverse KOT.
// It is composed from bill data at print time and never stored.
type KOTTicket struct {
	OutletName string          `json:"outlet_name"`
	Table      string          `json:"table,omitempty"`
	OrderType  string          `json:"order_type"`
	KOTNo      int             `json:"kot_no"`
	Reverse    bool            `json:"reverse"`
	Kitchen    string          `json:"kitchen,omitempty"`
	Waiter     string          `json:"waiter,omitempty"`
	Pax        int             `json:"pax,omitempty"`
	Date       string          `json:"date"`
	Lines      []KOTTicketLine `json:"lines"`
}

// BillTicketLine is one aggregated item on a printed bill.
type BillTicketLine struct {
	Name   string `json:"name"`
	Qty    int    `json:"qty"`
	Rate   string `json:"rate"`
	Amount string `json:"amount"`
}

// BillTicketTax is one printed tax component.
type BillTicketTax struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// BillTicket is the guest-facing payload of a bill.
type BillTicket struct {
	Header   TicketHeader     `json:"header"`
	BillNo   string           `json:"bill_no"`
	Date     string           `json:"date"`
	Table    string           `json:"table,omitempty"`
	Pax      int              `json:"pax,omitempty"`
	Cashier  string           `json:"cashier,omitempty"`
	Customer string           `json:"customer,omitempty"`
	Lines    []BillTicketLine `json:"lines"`
	Gross    string           `json:"gross"`
	Discount string           `json:"discount,omitempty"`
	Taxes    []BillTicketTax  `json:"taxes,omitempty"`
	RoundOff string           `json:"round_off,omitempty"`
	Net      string           `json:"net"`
	NC       bool             `json:"nc"`
	Payments []BillTicketTax  `json:"payments,omitempty"`
	Footer   string           `json:"footer,omitempty"`
}
