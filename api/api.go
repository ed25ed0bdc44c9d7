// Package api 组装供应链后端的客户端SDK
// 通用接口和管理接口各一个HTTP客户端实例，令牌附加和401处理完全一致
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/kitchensync/api/auth"
	"github.com/kitchensync/api/catalog"
	"github.com/kitchensync/api/franchise"
	"github.com/kitchensync/api/ingredient"
	"github.com/kitchensync/api/model"
	"github.com/kitchensync/api/permission"
	"github.com/kitchensync/api/product"
	"github.com/kitchensync/api/role"
	"github.com/kitchensync/api/rolepermission"
	"github.com/kitchensync/api/user"
	"github.com/kitchensync/api/userfranchise"
	"github.com/kitchensync/pkg/config"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/rbac"
	"github.com/kitchensync/pkg/reconcile"
	"github.com/kitchensync/pkg/session"
)

// Options SDK配置
type Options struct {
	Config  *config.Config
	Session *session.Store
	// OnAuthFailure 认证失败时的跳转回调
	OnAuthFailure func()
	// HTTPClient 自定义底层客户端，测试用
	HTTPClient *http.Client
}

// SDK 客户端SDK
type SDK struct {
	Session *session.Store
	Cache   *querycache.Store

	Auth            *auth.Client
	Users           *user.Client
	Roles           *role.Client
	Permissions     *permission.Client
	RolePermissions *rolepermission.Client
	UserFranchises  *userfranchise.Client
	Franchises      *franchise.Client
	Products        *product.Client
	Ingredients     *ingredient.Client
	Catalogs        *catalog.Client

	rolePermSync      *reconcile.RolePermissions
	userFranchiseSync *reconcile.UserFranchises
}

// New 创建SDK
func New(opts Options) *SDK {
	cfg := opts.Config
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second

	// 通用接口客户端
	apiClient := httpc.New(httpc.Options{
		BaseURL:       cfg.API.BaseURL(),
		Timeout:       timeout,
		Session:       opts.Session,
		OnAuthFailure: opts.OnAuthFailure,
		HTTPClient:    opts.HTTPClient,
	})
	// 管理接口客户端，只有BaseURL不同
	adminClient := httpc.New(httpc.Options{
		BaseURL:       cfg.API.AdminBaseURL(),
		Timeout:       timeout,
		Session:       opts.Session,
		OnAuthFailure: opts.OnAuthFailure,
		HTTPClient:    opts.HTTPClient,
	})

	s := &SDK{
		Session:         opts.Session,
		Cache:           querycache.New(&cfg.Cache),
		Auth:            auth.New(apiClient, opts.Session),
		Users:           user.New(adminClient),
		Roles:           role.New(adminClient),
		Permissions:     permission.New(adminClient),
		RolePermissions: rolepermission.New(adminClient),
		UserFranchises:  userfranchise.New(adminClient),
		Franchises:      franchise.New(adminClient),
		Products:        product.New(apiClient),
		Ingredients:     ingredient.New(apiClient),
		Catalogs:        catalog.New(apiClient),
	}
	s.rolePermSync = reconcile.NewRolePermissions(s.RolePermissions)
	s.userFranchiseSync = reconcile.NewUserFranchises(s.UserFranchises)

	return s
}

// Close 释放缓存等资源
func (s *SDK) Close() {
	s.Cache.Close()
}

// CachedFranchises 读取全部加盟主体（走查询缓存）
func (s *SDK) CachedFranchises(ctx context.Context) ([]model.Franchise, error) {
	return querycache.FetchAs(ctx, s.Cache, franchise.AllKey(), s.Franchises.All)
}

// CachedPermissions 读取全部权限（走查询缓存）
func (s *SDK) CachedPermissions(ctx context.Context) ([]model.Permission, error) {
	return querycache.FetchAs(ctx, s.Cache, permission.AllKey(), s.Permissions.All)
}

// SetRolePermissions 把角色权限调和到目标集合
// 拉取权威的当前集合，按差异发出最少的增删调用，成功后标脏相关缓存
func (s *SDK) SetRolePermissions(ctx context.Context, roleID int64, desired []int64) error {
	current, err := s.RolePermissions.ListIDs(ctx, roleID)
	if err != nil {
		return err
	}

	return s.Cache.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.rolePermSync.Reconcile(ctx, roleID, current, desired)
		return err
	}, rolepermission.Resource)
}

// SetUserFranchises 把用户的加盟主体关联调和到目标集合
// 角色校验基于已缓存的加盟主体列表，校验失败时不发出关联调用
func (s *SDK) SetUserFranchises(ctx context.Context, u *model.User, desired []int64) error {
	franchises, err := s.CachedFranchises(ctx)
	if err != nil {
		return err
	}
	lookup := reconcile.LookupFromFranchises(franchises)
	userRole := rbac.Parse(u.RoleName)

	return s.Cache.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.userFranchiseSync.Reconcile(ctx, u.UserID, userRole, desired, lookup,
			func(ctx context.Context) ([]int64, error) {
				return s.UserFranchises.ListIDs(ctx, u.UserID)
			})
		return err
	}, userfranchise.Resource)
}
