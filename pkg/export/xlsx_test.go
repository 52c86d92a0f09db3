package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWrite_RoundTripsThroughExcelize(t *testing.T) {
	settlements := &Sheet{Name: "Settlements", Headers: []string{"Bill No", "Mode", "Amount"}}
	settlements.AddRow("R-1", "Cash", decimal.RequireFromString("180.00"))
	settlements.AddRow("R-2", "UPI", decimal.RequireFromString("42.50"))

	summary := &Sheet{Name: "Summary", Headers: []string{"Mode", "Amount"}}
	summary.AddRow("Cash", decimal.RequireFromString("180"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, settlements, summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Settlements", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Settlements")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Bill No", "Mode", "Amount"}, rows[0])
	assert.Equal(t, []string{"R-2", "UPI", "42.5"}, rows[2])
}

func TestWrite_RequiresSheet(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf))
}
