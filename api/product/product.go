package product

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/response"
)

// Resource 缓存key前缀
const Resource = "products"

// CreateRequest 创建产品请求
type CreateRequest struct {
	Name        string  `json:"name"`
	ProductType string  `json:"productType,omitempty"`
	Price       float64 `json:"price"`
}

// UpdateRequest 更新产品请求
type UpdateRequest struct {
	Name        string        `json:"name,omitempty"`
	ProductType string        `json:"productType,omitempty"`
	Price       *float64      `json:"price,omitempty"`
	Status      *model.Status `json:"status,omitempty"`
}

// Client 产品接口
type Client struct {
	http *httpc.Client
}

// New 创建产品接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// List 产品列表
func (c *Client) List(ctx context.Context, params *httpc.ListParams) (*response.Page[model.Product], error) {
	return httpc.Get[*response.Page[model.Product]](ctx, c.http, "/products", params.Values())
}

// Detail 产品详情
func (c *Client) Detail(ctx context.Context, id int64) (*model.Product, error) {
	return httpc.Get[*model.Product](ctx, c.http, fmt.Sprintf("/products/%d", id), nil)
}

// Create 创建产品
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*model.Product, error) {
	return httpc.Post[*model.Product](ctx, c.http, "/products", req)
}

// Update 更新产品
func (c *Client) Update(ctx context.Context, id int64, req *UpdateRequest) (*model.Product, error) {
	return httpc.Put[*model.Product](ctx, c.http, fmt.Sprintf("/products/%d", id), req)
}

// Remove 删除产品
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/products/%d", id))
}

// ListKey 列表缓存key
func ListKey(params *httpc.ListParams) querycache.Key {
	return querycache.NewKey(Resource, params.CacheKey()...)
}
