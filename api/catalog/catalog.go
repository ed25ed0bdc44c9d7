package catalog

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/response"
)

// Resource 缓存key前缀
const Resource = "catalogs"

// UpsertRequest 目录条目写入请求
// 复合主键 (franchiseId, productId)，价格和状态是仅有的可变字段
type UpsertRequest struct {
	Price  *float64      `json:"price,omitempty"`
	Status *model.Status `json:"status,omitempty"`
}

// Client 门店商品目录接口
type Client struct {
	http *httpc.Client
}

// New 创建目录接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// List 目录列表
func (c *Client) List(ctx context.Context, params *httpc.ListParams) (*response.Page[model.CatalogEntry], error) {
	return httpc.Get[*response.Page[model.CatalogEntry]](ctx, c.http, "/catalogs", params.Values())
}

// ListByFranchise 指定门店的目录
func (c *Client) ListByFranchise(ctx context.Context, franchiseID int64, params *httpc.ListParams) (*response.Page[model.CatalogEntry], error) {
	return httpc.Get[*response.Page[model.CatalogEntry]](ctx, c.http, fmt.Sprintf("/catalogs/%d", franchiseID), params.Values())
}

// Detail 单个目录条目
func (c *Client) Detail(ctx context.Context, franchiseID, productID int64) (*model.CatalogEntry, error) {
	return httpc.Get[*model.CatalogEntry](ctx, c.http, fmt.Sprintf("/catalogs/%d/%d", franchiseID, productID), nil)
}

// Upsert 写入目录条目（价格/状态）
func (c *Client) Upsert(ctx context.Context, franchiseID, productID int64, req *UpsertRequest) (*model.CatalogEntry, error) {
	return httpc.Put[*model.CatalogEntry](ctx, c.http, fmt.Sprintf("/catalogs/%d/%d", franchiseID, productID), req)
}

// Remove 删除目录条目
func (c *Client) Remove(ctx context.Context, franchiseID, productID int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/catalogs/%d/%d", franchiseID, productID))
}

// ListKey 列表缓存key
func ListKey(params *httpc.ListParams) querycache.Key {
	return querycache.NewKey(Resource, params.CacheKey()...)
}

// FranchiseKey 指定门店目录的缓存key
func FranchiseKey(franchiseID int64) querycache.Key {
	return querycache.NewKey(Resource, fmt.Sprintf("franchiseId=%d", franchiseID))
}
