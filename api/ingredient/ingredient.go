package ingredient

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/response"
)

// Resource 缓存key前缀
const Resource = "ingredients"

// CreateRequest 创建原料请求
type CreateRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// UpdateRequest 更新原料请求
type UpdateRequest struct {
	Name   string        `json:"name,omitempty"`
	Unit   string        `json:"unit,omitempty"`
	Status *model.Status `json:"status,omitempty"`
}

// Client 原料接口
type Client struct {
	http *httpc.Client
}

// New 创建原料接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// List 原料列表
func (c *Client) List(ctx context.Context, params *httpc.ListParams) (*response.Page[model.Ingredient], error) {
	return httpc.Get[*response.Page[model.Ingredient]](ctx, c.http, "/ingredients", params.Values())
}

// Detail 原料详情
func (c *Client) Detail(ctx context.Context, id int64) (*model.Ingredient, error) {
	return httpc.Get[*model.Ingredient](ctx, c.http, fmt.Sprintf("/ingredients/%d", id), nil)
}

// Create 创建原料
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*model.Ingredient, error) {
	return httpc.Post[*model.Ingredient](ctx, c.http, "/ingredients", req)
}

// Update 更新原料
func (c *Client) Update(ctx context.Context, id int64, req *UpdateRequest) (*model.Ingredient, error) {
	return httpc.Put[*model.Ingredient](ctx, c.http, fmt.Sprintf("/ingredients/%d", id), req)
}

// Remove 删除原料
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/ingredients/%d", id))
}

// ListKey 列表缓存key
func ListKey(params *httpc.ListParams) querycache.Key {
	return querycache.NewKey(Resource, params.CacheKey()...)
}
