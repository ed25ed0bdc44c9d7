package role

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/response"
)

// Resource 缓存key前缀
const Resource = "roles"

// CreateRequest 创建角色请求
type CreateRequest struct {
	Name string `json:"name"`
}

// UpdateRequest 更新角色请求
type UpdateRequest struct {
	Name string `json:"name"`
}

// Client 角色接口
type Client struct {
	http *httpc.Client
}

// New 创建角色接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// List 角色列表
func (c *Client) List(ctx context.Context, params *httpc.ListParams) (*response.Page[model.Role], error) {
	return httpc.Get[*response.Page[model.Role]](ctx, c.http, "/roles", params.Values())
}

// Detail 角色详情
func (c *Client) Detail(ctx context.Context, id int64) (*model.Role, error) {
	return httpc.Get[*model.Role](ctx, c.http, fmt.Sprintf("/roles/%d", id), nil)
}

// Create 创建角色
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*model.Role, error) {
	return httpc.Post[*model.Role](ctx, c.http, "/roles", req)
}

// Update 更新角色
func (c *Client) Update(ctx context.Context, id int64, req *UpdateRequest) (*model.Role, error) {
	return httpc.Put[*model.Role](ctx, c.http, fmt.Sprintf("/roles/%d", id), req)
}

// Remove 删除角色
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/roles/%d", id))
}

// ListKey 列表缓存key
func ListKey(params *httpc.ListParams) querycache.Key {
	return querycache.NewKey(Resource, params.CacheKey()...)
}
