package request

import "github.com/google/uuid"

// TestPrintRequest sends a test ticket to one printer setting
type TestPrintRequest struct {
	PrinterSettingID uuid.UUID `json:"printer_setting_id" binding:"required"`
}

// ReprintRequest reprints a bill, or one KOT of it when KOTNo is set
type ReprintRequest struct {
	BillID uuid.UUID `json:"bill_id" binding:"required"`
	KOTNo  int       `json:"kot_no" binding:"gte=0"`
}
