package rbac

import (
	"strings"

	"github.com/kitchensync/api/model"
)

// Role 客户端角色
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleKitchenStaff Role = "KitchenStaff"
	RoleStoreManager Role = "StoreManager"
	RoleStoreStaff   Role = "StoreStaff"
)

// Parse 解析角色名（大小写不敏感）
// 未知角色原样返回，导航和分配校验会把它当作无权限处理
func Parse(name string) Role {
	for _, r := range []Role{RoleAdmin, RoleKitchenStaff, RoleStoreManager, RoleStoreStaff} {
		if strings.EqualFold(name, string(r)) {
			return r
		}
	}
	return Role(name)
}

// IsAdmin 是否为管理员角色
func (r Role) IsAdmin() bool {
	return strings.EqualFold(string(r), string(RoleAdmin))
}

// allowedFranchiseTypes 角色可被分配的加盟主体类型
// 管理员不绑定任何加盟主体
var allowedFranchiseTypes = map[Role][]model.FranchiseType{
	RoleAdmin:        {},
	RoleKitchenStaff: {model.FranchiseCentralKitchen},
	RoleStoreManager: {model.FranchiseStore},
	RoleStoreStaff:   {model.FranchiseStore},
}

// AllowedFranchiseTypes 角色允许的加盟主体类型
func AllowedFranchiseTypes(r Role) []model.FranchiseType {
	types, ok := allowedFranchiseTypes[Parse(string(r))]
	if !ok {
		return nil
	}
	return types
}

// CanAssignFranchiseType 角色是否可被分配该类型的加盟主体
func CanAssignFranchiseType(r Role, t model.FranchiseType) bool {
	for _, allowed := range AllowedFranchiseTypes(r) {
		if allowed == t {
			return true
		}
	}
	return false
}
