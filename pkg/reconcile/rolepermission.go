package reconcile

import (
	"context"

	"github.com/kitchensync/pkg/logger"
	"go.uber.org/zap"
)

// RolePermissions 角色权限关联的差异调和器
type RolePermissions struct {
	links Linker
	log   *zap.Logger
}

// NewRolePermissions 创建角色权限调和器
func NewRolePermissions(links Linker) *RolePermissions {
	return &RolePermissions{
		links: links,
		log:   logger.Named("reconcile.rolepermission"),
	}
}

// Reconcile 把角色的权限集合调和到目标状态
// current 是刚拉取的服务端状态，desired 是界面编辑后的目标状态
// 差异为空时不发出任何网络调用；全部成功后返回新的本地状态（即desired）
func (r *RolePermissions) Reconcile(ctx context.Context, roleID int64, current, desired []int64) ([]int64, error) {
	diff := Compute(current, desired)
	if diff.Empty() {
		return current, nil
	}

	r.log.Info("调和角色权限",
		zap.Int64("roleId", roleID),
		zap.Int("add", len(diff.ToAdd)),
		zap.Int("remove", len(diff.ToRemove)))

	if err := apply(ctx, r.links, roleID, diff); err != nil {
		// 部分成功不回滚，真实状态以下一次拉取为准
		return current, err
	}
	return desired, nil
}
