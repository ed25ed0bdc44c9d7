package franchise

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/response"
)

// Resource 缓存key前缀
const Resource = "franchises"

// CreateRequest 创建加盟主体请求
type CreateRequest struct {
	Name     string              `json:"name"`
	Type     model.FranchiseType `json:"type"`
	Address  string              `json:"address,omitempty"`
	Location string              `json:"location,omitempty"`
}

// UpdateRequest 更新加盟主体请求
type UpdateRequest struct {
	Name     string        `json:"name,omitempty"`
	Status   *model.Status `json:"status,omitempty"`
	Address  string        `json:"address,omitempty"`
	Location string        `json:"location,omitempty"`
}

// Client 加盟主体接口
type Client struct {
	http *httpc.Client
}

// New 创建加盟主体接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// List 加盟主体列表
func (c *Client) List(ctx context.Context, params *httpc.ListParams) (*response.Page[model.Franchise], error) {
	return httpc.Get[*response.Page[model.Franchise]](ctx, c.http, "/franchises", params.Values())
}

// All 全部加盟主体（分配界面使用）
func (c *Client) All(ctx context.Context) ([]model.Franchise, error) {
	return httpc.Get[[]model.Franchise](ctx, c.http, "/franchises/all", nil)
}

// Detail 加盟主体详情
func (c *Client) Detail(ctx context.Context, id int64) (*model.Franchise, error) {
	return httpc.Get[*model.Franchise](ctx, c.http, fmt.Sprintf("/franchises/%d", id), nil)
}

// Create 创建加盟主体
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*model.Franchise, error) {
	return httpc.Post[*model.Franchise](ctx, c.http, "/franchises", req)
}

// Update 更新加盟主体
func (c *Client) Update(ctx context.Context, id int64, req *UpdateRequest) (*model.Franchise, error) {
	return httpc.Put[*model.Franchise](ctx, c.http, fmt.Sprintf("/franchises/%d", id), req)
}

// Remove 删除加盟主体
func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/franchises/%d", id))
}

// ListKey 列表缓存key
func ListKey(params *httpc.ListParams) querycache.Key {
	return querycache.NewKey(Resource, params.CacheKey()...)
}

// AllKey 全量缓存key
func AllKey() querycache.Key {
	return querycache.NewKey(Resource, "all")
}
