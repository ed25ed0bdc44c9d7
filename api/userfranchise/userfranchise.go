package userfranchise

import (
	"context"
	"fmt"

	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
)

// Resource 缓存key前缀
const Resource = "user-franchises"

// Client 用户加盟主体关联接口
type Client struct {
	http *httpc.Client
}

// New 创建用户加盟主体关联接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// ListIDs 用户当前关联的加盟主体ID列表
func (c *Client) ListIDs(ctx context.Context, userID int64) ([]int64, error) {
	return httpc.Get[[]int64](ctx, c.http, fmt.Sprintf("/users/%d/franchises", userID), nil)
}

// Assign 给用户关联单个加盟主体
func (c *Client) Assign(ctx context.Context, userID, franchiseID int64) error {
	_, err := httpc.Post[any](ctx, c.http, fmt.Sprintf("/users/%d/franchises/%d", userID, franchiseID), nil)
	return err
}

// Remove 解除用户的单个加盟主体关联
func (c *Client) Remove(ctx context.Context, userID, franchiseID int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/users/%d/franchises/%d", userID, franchiseID))
}

// ListKey 关联列表缓存key
func ListKey(userID int64) querycache.Key {
	return querycache.NewKey(Resource, fmt.Sprintf("userId=%d", userID))
}
