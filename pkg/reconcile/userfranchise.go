package reconcile

import (
	"context"
	"fmt"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/errors"
	"github.com/kitchensync/pkg/logger"
	"github.com/kitchensync/pkg/rbac"
	"go.uber.org/zap"
)

// FranchiseTypeLookup 加盟主体ID到类型的本地查表
// 数据来自已缓存的加盟主体列表，校验阶段不产生任何网络调用
type FranchiseTypeLookup func(franchiseID int64) (model.FranchiseType, bool)

// LookupFromFranchises 用加盟主体列表构造查表函数
func LookupFromFranchises(franchises []model.Franchise) FranchiseTypeLookup {
	byID := make(map[int64]model.FranchiseType, len(franchises))
	for _, f := range franchises {
		byID[f.FranchiseID] = f.Type
	}
	return func(id int64) (model.FranchiseType, bool) {
		t, ok := byID[id]
		return t, ok
	}
}

// UserFranchises 用户加盟主体关联的差异调和器（带角色校验）
type UserFranchises struct {
	links Linker
	log   *zap.Logger
}

// NewUserFranchises 创建用户加盟主体调和器
func NewUserFranchises(links Linker) *UserFranchises {
	return &UserFranchises{
		links: links,
		log:   logger.Named("reconcile.userfranchise"),
	}
}

// Validate 校验目标集合对该角色是否合法
//   - 管理员不可关联加盟主体，目标集合非空直接拒绝；空集合视为无操作
//   - 非管理员的目标集合不能为空
//   - 目标集合中的每个ID必须能查到类型，且类型在角色允许范围内
func Validate(userRole rbac.Role, desired []int64, lookup FranchiseTypeLookup) error {
	if userRole.IsAdmin() {
		if len(desired) > 0 {
			return errors.Validation("管理员不可分配加盟主体")
		}
		return nil
	}

	if len(desired) == 0 {
		return errors.Validation("至少选择一个加盟主体")
	}

	for _, id := range desired {
		t, ok := lookup(id)
		if !ok {
			return errors.Validation(fmt.Sprintf("加盟主体不存在: %d", id))
		}
		if !rbac.CanAssignFranchiseType(userRole, t) {
			return errors.Validation(fmt.Sprintf("角色 %s 不可分配 %s 类型的加盟主体", userRole, t))
		}
	}
	return nil
}

// Reconcile 把用户的加盟主体关联调和到目标状态
// 校验在一切网络调用之前执行，校验失败时连当前状态都不拉取；
// fetchCurrent 只在校验通过后调用一次，取服务端权威的"调和前"状态
func (r *UserFranchises) Reconcile(ctx context.Context, userID int64, userRole rbac.Role, desired []int64, lookup FranchiseTypeLookup, fetchCurrent func(context.Context) ([]int64, error)) ([]int64, error) {
	if err := Validate(userRole, desired, lookup); err != nil {
		return nil, err
	}

	// 管理员的空目标集合是无操作
	if userRole.IsAdmin() {
		return nil, nil
	}

	current, err := fetchCurrent(ctx)
	if err != nil {
		return nil, err
	}

	diff := Compute(current, desired)
	if diff.Empty() {
		return current, nil
	}

	r.log.Info("调和用户加盟主体",
		zap.Int64("userId", userID),
		zap.String("role", string(userRole)),
		zap.Int("add", len(diff.ToAdd)),
		zap.Int("remove", len(diff.ToRemove)))

	if err := apply(ctx, r.links, userID, diff); err != nil {
		return current, err
	}
	return desired, nil
}
