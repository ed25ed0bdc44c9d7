package rbac

import (
	"testing"

	"github.com/kitchensync/api/model"
	"github.com/stretchr/testify/assert"
)

func TestParseCaseInsensitive(t *testing.T) {
	assert.Equal(t, RoleAdmin, Parse("admin"))
	assert.Equal(t, RoleKitchenStaff, Parse("KITCHENSTAFF"))
	assert.Equal(t, RoleStoreManager, Parse("storemanager"))
	assert.Equal(t, Role("Ghost"), Parse("Ghost"))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, Role("ADMIN").IsAdmin())
	assert.False(t, RoleKitchenStaff.IsAdmin())
}

func TestAllowedFranchiseTypes(t *testing.T) {
	assert.Empty(t, AllowedFranchiseTypes(RoleAdmin))
	assert.Equal(t, []model.FranchiseType{model.FranchiseCentralKitchen}, AllowedFranchiseTypes(RoleKitchenStaff))
	assert.Equal(t, []model.FranchiseType{model.FranchiseStore}, AllowedFranchiseTypes(RoleStoreManager))
	assert.Equal(t, []model.FranchiseType{model.FranchiseStore}, AllowedFranchiseTypes(RoleStoreStaff))
	assert.Nil(t, AllowedFranchiseTypes(Role("Ghost")))
}

func TestCanAssignFranchiseType(t *testing.T) {
	assert.True(t, CanAssignFranchiseType(RoleKitchenStaff, model.FranchiseCentralKitchen))
	assert.False(t, CanAssignFranchiseType(RoleKitchenStaff, model.FranchiseStore))
	assert.True(t, CanAssignFranchiseType(RoleStoreStaff, model.FranchiseStore))
	assert.False(t, CanAssignFranchiseType(RoleStoreManager, model.FranchiseCentralKitchen))
	assert.False(t, CanAssignFranchiseType(RoleAdmin, model.FranchiseStore))
	assert.False(t, CanAssignFranchiseType(Role("Ghost"), model.FranchiseStore))
}

func TestNavigationFor(t *testing.T) {
	admin := NavigationFor(RoleAdmin)
	assert.NotEmpty(t, admin)
	assert.Equal(t, "/admin", admin[0].Path)

	kitchen := NavigationFor(Role("kitchenstaff"))
	assert.NotEmpty(t, kitchen)
	assert.Equal(t, "/kitchen", kitchen[0].Path)

	assert.Empty(t, NavigationFor(Role("Ghost")))
}

func TestHomePath(t *testing.T) {
	assert.Equal(t, "/admin", HomePath(RoleAdmin))
	assert.Equal(t, "/kitchen", HomePath(RoleKitchenStaff))
	assert.Equal(t, "/store", HomePath(RoleStoreManager))
	assert.Equal(t, "/store", HomePath(RoleStoreStaff))
	// 未登录或未知角色落回登录页
	assert.Equal(t, "/login", HomePath(Role("")))
}
