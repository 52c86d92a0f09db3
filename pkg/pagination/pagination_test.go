package pagination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage string
		wantPage      int
		wantPerPage   int
	}{
		{"defaults", "", "", 1, DefaultPerPage},
		{"explicit", "4", "25", 4, 25},
		{"negative page", "-2", "10", 1, 10},
		{"zero per page", "1", "0", 1, DefaultPerPage},
		{"capped", "1", "1000", 1, MaxPerPage},
		{"garbage", "two", "lots", 1, DefaultPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Parse("1", "20").Offset())
	assert.Equal(t, 40, Parse("3", "20").Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 0, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestNilItemsSerializeAsEmptyList(t *testing.T) {
	result := NewPaginatedResult[string](nil, NewPagination(1, 15, 0))
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items":[]`)
}
