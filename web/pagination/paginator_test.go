package pagination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginator_Summary(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		total    int
		expected Summary
	}{
		{
			name:     "empty set",
			page:     1,
			pageSize: 10,
			total:    0,
			expected: Summary{Count: 0, Offset: 0, Page: 1, PageSize: 10, LastPage: 0},
		},
		{
			name:     "last partial page",
			page:     3,
			pageSize: 10,
			total:    25,
			expected: Summary{Count: 25, Offset: 20, Page: 3, PageSize: 10, LastPage: 3},
		},
		{
			name:     "page beyond last resets to first",
			page:     99,
			pageSize: 10,
			total:    25,
			expected: Summary{Count: 25, Offset: 0, Page: 1, PageSize: 10, LastPage: 3},
		},
		{
			name:     "page below one resets to first",
			page:     0,
			pageSize: 5,
			total:    12,
			expected: Summary{Count: 12, Offset: 0, Page: 1, PageSize: 5, LastPage: 3},
		},
		{
			name:     "exact multiple",
			page:     2,
			pageSize: 10,
			total:    20,
			expected: Summary{Count: 20, Offset: 10, Page: 2, PageSize: 10, LastPage: 2},
		},
		{
			name:     "invalid page size falls back to default",
			page:     2,
			pageSize: 0,
			total:    15,
			expected: Summary{Count: 15, Offset: 10, Page: 2, PageSize: DefaultPageSize, LastPage: 2},
		},
		{
			name:     "negative total counts as empty",
			page:     4,
			pageSize: 10,
			total:    -3,
			expected: Summary{Count: 0, Offset: 0, Page: 1, PageSize: 10, LastPage: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.page, tt.pageSize, tt.total).Summary())
		})
	}
}

func TestPaginator_Invariants(t *testing.T) {
	for total := 0; total <= 57; total++ {
		for pageSize := 1; pageSize <= 12; pageSize++ {
			for page := -1; page <= 8; page++ {
				p := New(page, pageSize, total)

				// ceil(total / pageSize)
				assert.Equal(t, (total+pageSize-1)/pageSize, p.TotalPages())
				assert.GreaterOrEqual(t, p.Page(), 1)
				if p.TotalPages() > 0 {
					assert.LessOrEqual(t, p.Page(), p.TotalPages())
				}
				assert.Equal(t, (p.Page()-1)*p.PageSize(), p.Offset())
				assert.LessOrEqual(t, p.Offset(), total)
			}
		}
	}
}

func TestSummary_JSON(t *testing.T) {
	raw, err := json.Marshal(New(3, 10, 25).Summary())
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":25,"offset":20,"page":3,"page_size":10,"last_page":3}`, string(raw))
}
