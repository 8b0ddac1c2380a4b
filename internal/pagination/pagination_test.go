package pagination

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	appErrors "reminer-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateWindowProperties(t *testing.T) {
	for n := 0; n <= 23; n++ {
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}
		for k := 1; k <= 9; k++ {
			wantTotal := (n + k - 1) / k
			for p := 1; p <= wantTotal+2; p++ {
				page := Paginate(items, Params{Page: p, PageSize: k})

				assert.Equal(t, wantTotal, page.TotalPages, "n=%d k=%d", n, k)

				want := n - (p-1)*k
				if want > k {
					want = k
				}
				if want < 0 {
					want = 0
				}
				require.Len(t, page.Items, want, "n=%d k=%d p=%d", n, k, p)
				if want > 0 {
					assert.Equal(t, (p-1)*k, page.Items[0])
				}
			}
		}
	}
}

func TestPaginateFlattenedReviews(t *testing.T) {
	// Two apps with 3 and 2 reviews, page size 4.
	flat := []string{"a1r1", "a1r2", "a1r3", "a2r1", "a2r2"}

	first := Paginate(flat, Params{Page: 1, PageSize: 4})
	assert.Equal(t, []string{"a1r1", "a1r2", "a1r3", "a2r1"}, first.Items)
	assert.Equal(t, 2, first.TotalPages)

	second := Paginate(flat, Params{Page: 2, PageSize: 4})
	assert.Equal(t, []string{"a2r2"}, second.Items)

	past := Paginate(flat, Params{Page: 3, PageSize: 4})
	assert.Empty(t, past.Items)
	assert.NotNil(t, past.Items)
}

func TestParseParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ParseParams(url.Values{}, 8)
		require.NoError(t, err)
		assert.Equal(t, Params{Page: 1, PageSize: 8}, p)
	})

	t.Run("explicit values", func(t *testing.T) {
		p, err := ParseParams(url.Values{"page": {"3"}, "page_size": {"10"}}, 8)
		require.NoError(t, err)
		assert.Equal(t, Params{Page: 3, PageSize: 10}, p)
	})

	for _, q := range []url.Values{
		{"page": {"abc"}},
		{"page": {"0"}},
		{"page_size": {"-2"}},
		{"page_size": {"1.5"}},
	} {
		_, err := ParseParams(q, 4)
		assert.True(t, appErrors.IsValidation(err), "query %v", q)
	}
}

func TestPaginateHugeValues(t *testing.T) {
	items := []string{"a", "b", "c"}

	t.Run("max page is past the end", func(t *testing.T) {
		page := Paginate(items, Params{Page: math.MaxInt, PageSize: 2})
		assert.Empty(t, page.Items)
		assert.NotNil(t, page.Items)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("max page size is a single page", func(t *testing.T) {
		page := Paginate(items, Params{Page: 1, PageSize: math.MaxInt})
		assert.Equal(t, items, page.Items)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("parsed from the query", func(t *testing.T) {
		q := url.Values{"page": {strconv.Itoa(math.MaxInt)}, "page_size": {"2"}}
		params, err := ParseParams(q, 4)
		require.NoError(t, err)
		assert.Empty(t, Paginate(items, params).Items)
	})
}
