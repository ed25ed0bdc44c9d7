package user

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/response"
)

// Resource 缓存key前缀
const Resource = "users"

// CreateRequest 创建用户请求
type CreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int64  `json:"roleId"`
}

// UpdateRequest 更新用户请求
// username/email 创建后不可修改，只接受角色和状态
type UpdateRequest struct {
	RoleID *int64        `json:"roleId,omitempty"`
	Status *model.Status `json:"status,omitempty"`
}

// Client 用户接口
type Client struct {
	http *httpc.Client
}

// New 创建用户接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// List 用户列表
func (c *Client) List(ctx context.Context, params *httpc.ListParams) (*response.Page[model.User], error) {
	return httpc.Get[*response.Page[model.User]](ctx, c.http, "/users", params.Values())
}

// Detail 用户详情
func (c *Client) Detail(ctx context.Context, id int64) (*model.User, error) {
	return httpc.Get[*model.User](ctx, c.http, fmt.Sprintf("/users/%d", id), nil)
}

// Create 创建用户
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*model.User, error) {
	return httpc.Post[*model.User](ctx, c.http, "/users", req)
}

// Update 更新用户
func (c *Client) Update(ctx context.Context, id int64, req *UpdateRequest) (*model.User, error) {
	return httpc.Put[*model.User](ctx, c.http, fmt.Sprintf("/users/%d", id), req)
}

// Remove 删除用户
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/users/%d", id))
}

// ListKey 列表缓存key
func ListKey(params *httpc.ListParams) querycache.Key {
	return querycache.NewKey(Resource, params.CacheKey()...)
}

// DetailKey 详情缓存key
func DetailKey(id int64) querycache.Key {
	return querycache.NewKey(Resource, fmt.Sprintf("id=%d", id))
}
