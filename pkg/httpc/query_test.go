package httpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListParamsOmitsZeroValues(t *testing.T) {
	p := &ListParams{Page: 2}
	values := p.Values()

	assert.Equal(t, "2", values.Get("page"))
	_, hasStatus := values["status"]
	assert.False(t, hasStatus)
	_, hasSearch := values["search"]
	assert.False(t, hasSearch)
	assert.Equal(t, "page=2", values.Encode())
}

func TestListParamsNilSafe(t *testing.T) {
	var p *ListParams
	assert.Empty(t, p.Values())
}

func TestListParamsFullSet(t *testing.T) {
	p := &ListParams{
		Search:    "面粉",
		Status:    "ACTIVE",
		SortBy:    "name",
		SortOrder: "asc",
		Page:      1,
		PageSize:  20,
		MinPrice:  Float(0),
		MaxPrice:  Float(9.5),
	}
	values := p.Values()

	assert.Equal(t, "面粉", values.Get("search"))
	assert.Equal(t, "ACTIVE", values.Get("status"))
	// 0是合法价格，不是缺省值
	assert.Equal(t, "0", values.Get("minPrice"))
	assert.Equal(t, "9.5", values.Get("maxPrice"))
}

func TestCacheKeyStableOrder(t *testing.T) {
	a := &ListParams{Search: "x", Status: "ACTIVE", Page: 1}
	b := &ListParams{Page: 1, Status: "ACTIVE", Search: "x"}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, []string{"page=1", "search=x", "status=ACTIVE"}, a.CacheKey())
}

func TestCacheKeyDistinguishesParams(t *testing.T) {
	a := &ListParams{Page: 1}
	b := &ListParams{Page: 2}
	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
}
