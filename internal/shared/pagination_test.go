package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.PerPage)
	require.Equal(t, 3, p.TotalPages)
}

func TestPageParams(t *testing.T) {
	page, perPage := PageParams(url.Values{"page": {"2"}, "per_page": {"10"}})
	require.Equal(t, 2, page)
	require.Equal(t, 10, perPage)

	page, perPage = PageParams(url.Values{"page": {"oops"}})
	require.Zero(t, page)
	require.Zero(t, perPage)
}

func TestPaginationSlice(t *testing.T) {
	cases := []struct {
		name      string
		page, per int
		total     int
		from, to  int
	}{
		{"first page", 1, 10, 25, 0, 10},
		{"middle page", 2, 10, 25, 10, 20},
		{"partial last page", 3, 10, 25, 20, 25},
		{"past the end", 5, 10, 25, 25, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to := NewPagination(tc.page, tc.per, tc.total).Slice()
			require.Equal(t, tc.from, from)
			require.Equal(t, tc.to, to)
		})
	}
}
