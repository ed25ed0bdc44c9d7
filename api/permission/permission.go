package permission

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/response"
)

// Resource 缓存key前缀
const Resource = "permissions"

// CreateRequest 创建权限请求
type CreateRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
	GroupName   string `json:"groupName,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateRequest 更新权限请求
type UpdateRequest struct {
	Name        string `json:"name,omitempty"`
	GroupName   string `json:"groupName,omitempty"`
	Description string `json:"description,omitempty"`
}

// Client 权限接口
type Client struct {
	http *httpc.Client
}

// New 创建权限接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// List 权限列表
func (c *Client) List(ctx context.Context, params *httpc.ListParams) (*response.Page[model.Permission], error) {
	return httpc.Get[*response.Page[model.Permission]](ctx, c.http, "/permissions", params.Values())
}

// All 全部权限（权限分配界面使用）
func (c *Client) All(ctx context.Context) ([]model.Permission, error) {
	return httpc.Get[[]model.Permission](ctx, c.http, "/permissions/all", nil)
}

// Detail 权限详情
func (c *Client) Detail(ctx context.Context, id int64) (*model.Permission, error) {
	return httpc.Get[*model.Permission](ctx, c.http, fmt.Sprintf("/permissions/%d", id), nil)
}

// Create 创建权限
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*model.Permission, error) {
	return httpc.Post[*model.Permission](ctx, c.http, "/permissions", req)
}

// Update 更新权限
func (c *Client) Update(ctx context.Context, id int64, req *UpdateRequest) (*model.Permission, error) {
	return httpc.Put[*model.Permission](ctx, c.http, fmt.Sprintf("/permissions/%d", id), req)
}

// Remove 删除权限
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/permissions/%d", id))
}

// ListKey 列表缓存key
func ListKey(params *httpc.ListParams) querycache.Key {
	return querycache.NewKey(Resource, params.CacheKey()...)
}

// AllKey 全量缓存key
func AllKey() querycache.Key {
	return querycache.NewKey(Resource, "all")
}
