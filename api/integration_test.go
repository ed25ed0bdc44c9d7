package api_test

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/kitchensync/api"
	"github.com/kitchensync/api/model"
	"github.com/kitchensync/api/product"
	"github.com/kitchensync/internal/backendtest"
	"github.com/kitchensync/pkg/config"
	"github.com/kitchensync/pkg/errors"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/rbac"
	"github.com/kitchensync/pkg/response"
	"github.com/kitchensync/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// env 一套跑在进程内后端上的SDK实例
type env struct {
	backend   *backendtest.Server
	sdk       *api.SDK
	redirects int32
}

func newEnv(t *testing.T) *env {
	t.Helper()

	backend := backendtest.New()
	require.NoError(t, backend.Start())
	t.Cleanup(func() { backend.Close() })

	store, err := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	e := &env{backend: backend}
	cfg := &config.Config{
		API: config.APIConfig{
			Origin:         backend.URL(),
			Prefix:         "/api",
			AdminPrefix:    "/api/admin",
			TimeoutSeconds: 5,
		},
		Cache: config.CacheConfig{StaleSeconds: 300, RetentionSeconds: 600, RetryCount: 1},
	}
	e.sdk = api.New(api.Options{
		Config:  cfg,
		Session: store,
		OnAuthFailure: func() {
			atomic.AddInt32(&e.redirects, 1)
		},
	})
	t.Cleanup(e.sdk.Close)
	return e
}

func (e *env) login(t *testing.T, username, role string, userID int64) {
	t.Helper()
	e.backend.SeedAccount(backendtest.Account{
		UserID:   userID,
		Username: username,
		Password: "secret",
		Role:     role,
	})
	_, err := e.sdk.Auth.Login(context.Background(), username, "secret")
	require.NoError(t, err)
}

func sortedIDs(ids []int64) []int64 {
	out := append([]int64{}, ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestLoginEstablishesSessionAndNavigation(t *testing.T) {
	e := newEnv(t)

	result, err := e.sdk.Auth.Login(context.Background(), "nobody", "wrong")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.False(t, e.sdk.Session.Authenticated())

	e.login(t, "chef", "KitchenStaff", 7)

	sess := e.sdk.Session.Get()
	require.NotNil(t, sess)
	assert.Equal(t, "chef", sess.Username)
	assert.Equal(t, int64(7), sess.UserID)

	// 登录角色直接决定落地路径
	role := rbac.Parse(e.sdk.Session.Role())
	assert.Equal(t, rbac.RoleKitchenStaff, role)
	assert.Equal(t, "/kitchen", rbac.HomePath(role))
}

func TestRequestsCarrySessionToken(t *testing.T) {
	e := newEnv(t)
	e.login(t, "chef", "KitchenStaff", 7)
	e.backend.SeedProduct(model.Product{ProductID: 1, Name: "鲜切面", Status: model.StatusActive})

	page, err := e.sdk.Products.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "鲜切面", page.Items[0].Name)

	// 后续请求自动携带登录时拿到的令牌
	assert.Equal(t, e.sdk.Session.Token(), e.backend.LastBearer())
}

func TestUnauthorizedClearsSessionOnce(t *testing.T) {
	e := newEnv(t)
	e.login(t, "chef", "KitchenStaff", 7)
	e.backend.RevokeTokens()

	_, err := e.sdk.Products.List(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsAuthFailure(err))

	// 会话被清除、跳转回调恰好触发一次
	assert.False(t, e.sdk.Session.Authenticated())
	assert.Empty(t, e.sdk.Session.Token())
	assert.Equal(t, int32(1), atomic.LoadInt32(&e.redirects))
}

func TestCachedProductListSkipsRepeatFetch(t *testing.T) {
	e := newEnv(t)
	e.login(t, "chef", "KitchenStaff", 7)
	e.backend.SeedProduct(model.Product{ProductID: 1, Name: "鲜切面", Status: model.StatusActive})

	ctx := context.Background()
	params := &httpc.ListParams{Page: 1}
	fetch := func() (*response.Page[model.Product], error) {
		return querycache.FetchAs(ctx, e.sdk.Cache, product.ListKey(params),
			func(ctx context.Context) (*response.Page[model.Product], error) {
				return e.sdk.Products.List(ctx, params)
			})
	}

	before := e.backend.Calls("GET /api/products")
	for i := 0; i < 3; i++ {
		page, err := fetch()
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
	}
	assert.Equal(t, before+1, e.backend.Calls("GET /api/products"))

	// 变更后标脏，下一次读取重新拉取
	e.sdk.Cache.Invalidate(product.Resource)
	_, err := fetch()
	require.NoError(t, err)
	assert.Equal(t, before+2, e.backend.Calls("GET /api/products"))
}

func TestSetRolePermissionsMinimalCalls(t *testing.T) {
	e := newEnv(t)
	e.login(t, "admin", "Admin", 1)
	e.backend.SeedRolePermissions(10, 1, 2, 3)

	ctx := context.Background()
	require.NoError(t, e.sdk.SetRolePermissions(ctx, 10, []int64{2, 3, 4}))

	assert.Equal(t, []int64{2, 3, 4}, sortedIDs(e.backend.RolePermissionIDs(10)))
	// 一增一删，多余的成员不重复提交
	assert.Equal(t, 1, e.backend.Calls("POST /api/admin/roles/:roleId/permissions/:permissionId"))
	assert.Equal(t, 1, e.backend.Calls("DELETE /api/admin/roles/:roleId/permissions/:permissionId"))
}

func TestSetRolePermissionsNoopSkipsWrites(t *testing.T) {
	e := newEnv(t)
	e.login(t, "admin", "Admin", 1)
	e.backend.SeedRolePermissions(10, 1, 2)

	require.NoError(t, e.sdk.SetRolePermissions(context.Background(), 10, []int64{2, 1}))
	assert.Zero(t, e.backend.Calls("POST /api/admin/roles/:roleId/permissions/:permissionId"))
	assert.Zero(t, e.backend.Calls("DELETE /api/admin/roles/:roleId/permissions/:permissionId"))
}

func TestSetUserFranchisesReconciles(t *testing.T) {
	e := newEnv(t)
	e.login(t, "admin", "Admin", 1)
	e.backend.SeedFranchise(model.Franchise{FranchiseID: 1, Name: "中央厨房一号", Type: model.FranchiseCentralKitchen})
	e.backend.SeedFranchise(model.Franchise{FranchiseID: 2, Name: "门店一号", Type: model.FranchiseStore})
	e.backend.SeedFranchise(model.Franchise{FranchiseID: 3, Name: "门店二号", Type: model.FranchiseStore})
	e.backend.SeedUserFranchises(7, 2)

	target := &model.User{UserID: 7, Username: "dianzhang", RoleName: "StoreManager"}
	require.NoError(t, e.sdk.SetUserFranchises(context.Background(), target, []int64{2, 3}))

	assert.Equal(t, []int64{2, 3}, sortedIDs(e.backend.UserFranchiseIDs(7)))
	assert.Equal(t, 1, e.backend.Calls("POST /api/admin/users/:userId/franchises/:franchiseId"))
	assert.Zero(t, e.backend.Calls("DELETE /api/admin/users/:userId/franchises/:franchiseId"))
}

func TestSetUserFranchisesRoleGateBlocksAllWrites(t *testing.T) {
	e := newEnv(t)
	e.login(t, "admin", "Admin", 1)
	e.backend.SeedFranchise(model.Franchise{FranchiseID: 1, Name: "中央厨房一号", Type: model.FranchiseCentralKitchen})
	e.backend.SeedFranchise(model.Franchise{FranchiseID: 2, Name: "门店一号", Type: model.FranchiseStore})
	e.backend.SeedUserFranchises(7, 2)

	// 加盟主体列表已缓存，后面的校验只查本地表
	_, err := e.sdk.CachedFranchises(context.Background())
	require.NoError(t, err)
	before := e.backend.TotalCalls()

	// 门店经理不能分配中央厨房
	target := &model.User{UserID: 7, Username: "dianzhang", RoleName: "StoreManager"}
	err = e.sdk.SetUserFranchises(context.Background(), target, []int64{1, 2})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	// 校验失败时一个网络请求都不发，连当前关联都不拉取
	assert.Equal(t, before, e.backend.TotalCalls())
	assert.Equal(t, []int64{2}, sortedIDs(e.backend.UserFranchiseIDs(7)))
}
