package model

import "time"

// Status 启用状态
// 所有列表实体只有两种持久化状态，删除走显式的remove接口
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// FranchiseType 加盟主体类型
type FranchiseType string

const (
	FranchiseStore          FranchiseType = "STORE"
	FranchiseCentralKitchen FranchiseType = "CENTRAL_KITCHEN"
)

// User 用户
// username/email 创建后不可修改，更新只接受角色和状态
type User struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Status    Status    `json:"status"`
	RoleID    int64     `json:"roleId"`
	RoleName  string    `json:"roleName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Role 角色
type Role struct {
	RoleID int64  `json:"roleId"`
	Name   string `json:"name"`
}

// Permission 权限
type Permission struct {
	PermissionID int64  `json:"permissionId"`
	Code         string `json:"code"`
	Name         string `json:"name,omitempty"`
	GroupName    string `json:"groupName,omitempty"`
	Description  string `json:"description,omitempty"`
}

// DefaultPermissionGroup 未分组权限的展示分组
const DefaultPermissionGroup = "其他"

// Group 权限所属分组，未设置时归入默认分组
func (p *Permission) Group() string {
	if p.GroupName == "" {
		return DefaultPermissionGroup
	}
	return p.GroupName
}

// GroupPermissions 按分组聚合权限列表
func GroupPermissions(perms []Permission) map[string][]Permission {
	groups := make(map[string][]Permission)
	for _, p := range perms {
		groups[p.Group()] = append(groups[p.Group()], p)
	}
	return groups
}

// Franchise 加盟主体（门店或中央厨房）
type Franchise struct {
	FranchiseID int64         `json:"franchiseId"`
	Name        string        `json:"name"`
	Type        FranchiseType `json:"type"`
	Status      Status        `json:"status"`
	Address     string        `json:"address"`
	Location    string        `json:"location"`
}

// Product 产品
type Product struct {
	ProductID   int64   `json:"productId"`
	Name        string  `json:"name"`
	ProductType string  `json:"productType,omitempty"`
	Price       float64 `json:"price"`
	Status      Status  `json:"status"`
}

// Ingredient 原料
type Ingredient struct {
	IngredientID int64  `json:"ingredientId"`
	Name         string `json:"name"`
	Unit         string `json:"unit,omitempty"`
	Status       Status `json:"status"`
}

// CatalogEntry 门店商品目录条目
// 复合主键 (franchiseId, productId)，除状态外只有价格可独立修改
type CatalogEntry struct {
	FranchiseID int64   `json:"franchiseId"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Price       float64 `json:"price"`
	Status      Status  `json:"status"`
}
