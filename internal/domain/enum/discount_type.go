package enum

// DiscountType selects how a bill discount value is interpreted
type DiscountType string

const (
	DiscountTypeNone       DiscountType = ""
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFlat       DiscountType = "FLAT"
)

// IsValid reports whether t is a known discount type
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypeNone, DiscountTypePercentage, DiscountTypeFlat:
		return true
	}
	return false
}
