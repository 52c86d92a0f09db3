package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BillStatus represents where a bill is in its lifecycle
type BillStatus int

const (
	BillStatusOpen     BillStatus = 0
	BillStatusBilled   BillStatus = 1
	BillStatusSettled  BillStatus = 2
	BillStatusReversed BillStatus = 3
)

var billStatusNames = [...]string{"Open", "Billed", "Settled", "Reversed"}

func (s BillStatus) String() string {
	if int(s) < 0 || int(s) >= len(billStatusNames) {
		return "Open"
	}
	return billStatusNames[s]
}

// IsActive reports whether the bill still holds its table
func (s BillStatus) IsActive() bool {
	return s == BillStatusOpen || s == BillStatusBilled
}

// IsBilled reports whether a bill number has been issued and the bill finalized
func (s BillStatus) IsBilled() bool {
	return s == BillStatusBilled || s == BillStatusSettled
}

// ParseBillStatus converts a status name to a BillStatus
func ParseBillStatus(str string) (BillStatus, bool) {
	for i, name := range billStatusNames {
		if name == str {
			return BillStatus(i), true
		}
	}
	return BillStatusOpen, false
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = BillStatus(i)
		return nil
	}
	if parsed, ok := ParseBillStatus(str); ok {
		*s = parsed
	}
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BillStatus(v)
	case int:
		*s = BillStatus(v)
	}
	return nil
}
