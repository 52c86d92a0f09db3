package enum

// PrinterPurpose is what kind of ticket a printer setting serves
type PrinterPurpose string

const (
	PrinterPurposeKOT  PrinterPurpose = "KOT"
	PrinterPurposeBill PrinterPurpose = "BILL"
)

// PrinterConnection is how the API reaches a printer
type PrinterConnection string

const (
	PrinterConnectionNetwork PrinterConnection = "network"
	PrinterConnectionUSB     PrinterConnection = "usb"
	PrinterConnectionNone    PrinterConnection = "none"
)

// IsValid reports whether p is a known purpose
func (p PrinterPurpose) IsValid() bool {
	return p == PrinterPurposeKOT || p == PrinterPurposeBill
}

// IsValid reports whether c is a known connection
func (c PrinterConnection) IsValid() bool {
	switch c {
	case PrinterConnectionNetwork, PrinterConnectionUSB, PrinterConnectionNone:
		return true
	}
	return false
}
