package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TableStatus represents the occupancy of a dining table
type TableStatus int

const (
	TableStatusFree     TableStatus = 0
	TableStatusOccupied TableStatus = 1
	TableStatusBilled   TableStatus = 2
)

func (t TableStatus) String() string {
	names := [...]string{"Free", "Occupied", "Billed"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Free"
	}
	return names[t]
}

func (t TableStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TableStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = TableStatus(i)
		return nil
	}
	switch str {
	case "Free":
		*t = TableStatusFree
	case "Occupied":
		*t = TableStatusOccupied
	case "Billed":
		*t = TableStatusBilled
	}
	return nil
}

func (t TableStatus) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TableStatus) Scan(value interface{}) error {
	if value == nil {
		*t = TableStatusFree
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TableStatus(v)
	case int:
		*t = TableStatus(v)
	}
	return nil
}
