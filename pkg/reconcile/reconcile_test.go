package reconcile

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/errors"
	"github.com/kitchensync/pkg/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLinker 记录调用的Linker
type fakeLinker struct {
	mu       sync.Mutex
	assigned []int64
	removed  []int64
	failOn   map[int64]error // childID → 返回的错误
}

func (f *fakeLinker) Assign(ctx context.Context, parentID, childID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[childID]; ok {
		return err
	}
	f.assigned = append(f.assigned, childID)
	return nil
}

func (f *fakeLinker) Remove(ctx context.Context, parentID, childID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[childID]; ok {
		return err
	}
	f.removed = append(f.removed, childID)
	return nil
}

func (f *fakeLinker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assigned) + len(f.removed)
}

func sorted(ids []int64) []int64 {
	out := append([]int64{}, ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		current    []int64
		desired    []int64
		wantAdd    []int64
		wantRemove []int64
	}{
		{
			name:       "增删各一",
			current:    []int64{1, 2, 3},
			desired:    []int64{2, 3, 4},
			wantAdd:    []int64{4},
			wantRemove: []int64{1},
		},
		{
			name:    "集合相同无差异",
			current: []int64{1, 2},
			desired: []int64{2, 1},
		},
		{
			name:    "全新集合",
			desired: []int64{5, 6},
			wantAdd: []int64{5, 6},
		},
		{
			name:       "清空集合",
			current:    []int64{7},
			wantRemove: []int64{7},
		},
		{
			name:    "重复元素按集合语义",
			current: []int64{1, 1, 2},
			desired: []int64{2, 2, 3},
			wantAdd: []int64{3}, wantRemove: []int64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := Compute(tt.current, tt.desired)
			assert.Equal(t, sorted(tt.wantAdd), sorted(diff.ToAdd))
			assert.Equal(t, sorted(tt.wantRemove), sorted(diff.ToRemove))
			assert.Equal(t, len(tt.wantAdd)+len(tt.wantRemove), diff.Calls())
		})
	}
}

func TestRolePermissionsMinimalCalls(t *testing.T) {
	links := &fakeLinker{}
	r := NewRolePermissions(links)

	result, err := r.Reconcile(context.Background(), 10, []int64{1, 2, 3}, []int64{2, 3, 4})
	require.NoError(t, err)

	// 恰好一增一删
	assert.Equal(t, []int64{4}, links.assigned)
	assert.Equal(t, []int64{1}, links.removed)
	assert.Equal(t, sorted([]int64{2, 3, 4}), sorted(result))
}

func TestRolePermissionsNoopSkipsNetwork(t *testing.T) {
	links := &fakeLinker{}
	r := NewRolePermissions(links)

	result, err := r.Reconcile(context.Background(), 10, []int64{1, 2}, []int64{2, 1})
	require.NoError(t, err)
	assert.Zero(t, links.calls())
	assert.Equal(t, []int64{1, 2}, result)
}

func TestRolePermissionsPartialFailureKeepsCurrent(t *testing.T) {
	links := &fakeLinker{failOn: map[int64]error{4: errors.ErrServer}}
	r := NewRolePermissions(links)

	result, err := r.Reconcile(context.Background(), 10, []int64{1, 2}, []int64{2, 4, 5})
	require.Error(t, err)

	// 成功的调用不回滚，但本地状态不乐观更新
	assert.Equal(t, []int64{1, 2}, result)
	assert.Contains(t, links.assigned, int64(5))
	assert.Equal(t, []int64{1}, links.removed)
}

func storeLookup() FranchiseTypeLookup {
	return LookupFromFranchises([]model.Franchise{
		{FranchiseID: 1, Name: "中央厨房一号", Type: model.FranchiseCentralKitchen},
		{FranchiseID: 2, Name: "门店一号", Type: model.FranchiseStore},
		{FranchiseID: 3, Name: "门店二号", Type: model.FranchiseStore},
	})
}

func currentFrom(links *fakeLinker, ids ...int64) func(context.Context) ([]int64, error) {
	return func(ctx context.Context) ([]int64, error) {
		return ids, nil
	}
}

func TestUserFranchisesRoleGatedRejection(t *testing.T) {
	links := &fakeLinker{}
	r := NewUserFranchises(links)

	// StoreManager 不能分配中央厨房
	_, err := r.Reconcile(context.Background(), 7, rbac.RoleStoreManager,
		[]int64{1, 2}, storeLookup(), currentFrom(links))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Zero(t, links.calls())
}

func TestUserFranchisesUnknownIDRejected(t *testing.T) {
	links := &fakeLinker{}
	r := NewUserFranchises(links)

	_, err := r.Reconcile(context.Background(), 7, rbac.RoleStoreManager,
		[]int64{99}, storeLookup(), currentFrom(links))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Zero(t, links.calls())
}

func TestUserFranchisesEmptyDesiredRejectedForNonAdmin(t *testing.T) {
	links := &fakeLinker{}
	r := NewUserFranchises(links)

	_, err := r.Reconcile(context.Background(), 7, rbac.RoleStoreStaff,
		nil, storeLookup(), currentFrom(links))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Zero(t, links.calls())
}

func TestUserFranchisesAdminExclusion(t *testing.T) {
	links := &fakeLinker{}
	r := NewUserFranchises(links)

	// 非空目标集合直接拒绝
	_, err := r.Reconcile(context.Background(), 1, rbac.RoleAdmin,
		[]int64{2}, storeLookup(), currentFrom(links))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Zero(t, links.calls())

	// 空目标集合是无操作
	_, err = r.Reconcile(context.Background(), 1, rbac.RoleAdmin,
		nil, storeLookup(), currentFrom(links))
	require.NoError(t, err)
	assert.Zero(t, links.calls())
}

func TestUserFranchisesReconciles(t *testing.T) {
	links := &fakeLinker{}
	r := NewUserFranchises(links)

	result, err := r.Reconcile(context.Background(), 7, rbac.RoleStoreManager,
		[]int64{2, 3}, storeLookup(), currentFrom(links, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, links.assigned)
	assert.Empty(t, links.removed)
	assert.Equal(t, sorted([]int64{2, 3}), sorted(result))
}
