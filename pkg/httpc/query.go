package httpc

import (
	"net/url"
	"sort"
	"strconv"
)

// ListParams 列表查询参数
// 零值字段不进入查询串（后端区分"未传"和"传了空值"）
type ListParams struct {
	Search      string
	Status      string
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
	Q           string
	ProductType string
	MinPrice    *float64 // 0是合法价格，用指针区分未设置
	MaxPrice    *float64
}

// Values 序列化为查询串，缺省字段完全省略
func (p *ListParams) Values() url.Values {
	values := url.Values{}
	if p == nil {
		return values
	}

	setStr := func(key, val string) {
		if val != "" {
			values.Set(key, val)
		}
	}
	setStr("search", p.Search)
	setStr("status", p.Status)
	setStr("sortBy", p.SortBy)
	setStr("sortOrder", p.SortOrder)
	setStr("q", p.Q)
	setStr("productType", p.ProductType)

	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.MinPrice != nil {
		values.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		values.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}

	return values
}

// CacheKey 参数的稳定顺序表示，用于拼缓存key
// 深度相等的参数产生相同的key片段
func (p *ListParams) CacheKey() []string {
	values := p.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+values.Get(k))
	}
	return parts
}

// Float 价格参数辅助函数
func Float(v float64) *float64 {
	return &v
}
