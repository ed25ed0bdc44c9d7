package rolepermission

import (
	"context"
	"fmt"

	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
)

// Resource 缓存key前缀
const Resource = "role-permissions"

// Client 角色权限关联接口
// 关联本身没有独立实体，存在与否就是全部事实
type Client struct {
	http *httpc.Client
}

// New 创建角色权限关联接口
func New(http *httpc.Client) *Client {
	return &Client{http: http}
}

// ListIDs 角色当前拥有的权限ID列表
func (c *Client) ListIDs(ctx context.Context, roleID int64) ([]int64, error) {
	return httpc.Get[[]int64](ctx, c.http, fmt.Sprintf("/roles/%d/permissions", roleID), nil)
}

// Assign 给角色添加单个权限
func (c *Client) Assign(ctx context.Context, roleID, permissionID int64) error {
	_, err := httpc.Post[any](ctx, c.http, fmt.Sprintf("/roles/%d/permissions/%d", roleID, permissionID), nil)
	return err
}

// Remove 移除角色的单个权限
func (c *Client) Remove(ctx context.Context, roleID, permissionID int64) error {
	return c.http.Delete(ctx, fmt.Sprintf("/roles/%d/permissions/%d", roleID, permissionID))
}

// ListKey 关联列表缓存key
func ListKey(roleID int64) querycache.Key {
	return querycache.NewKey(Resource, fmt.Sprintf("roleId=%d", roleID))
}
