package rbac

// MenuItem 导航菜单项
type MenuItem struct {
	Title    string     `json:"title"`
	Path     string     `json:"path"`
	Icon     string     `json:"icon,omitempty"`
	Children []MenuItem `json:"children,omitempty"`
}

// 各角色的导航菜单
// 纯查表，不依赖任何网络状态；角色校验由后端最终兜底
var navigation = map[Role][]MenuItem{
	RoleAdmin: {
		{Title: "控制台", Path: "/admin", Icon: "dashboard"},
		{Title: "用户管理", Path: "/admin/users", Icon: "user"},
		{Title: "角色权限", Path: "/admin/roles", Icon: "safety", Children: []MenuItem{
			{Title: "角色列表", Path: "/admin/roles"},
			{Title: "权限列表", Path: "/admin/permissions"},
		}},
		{Title: "加盟主体", Path: "/admin/franchises", Icon: "shop"},
		{Title: "产品管理", Path: "/admin/products", Icon: "appstore"},
		{Title: "原料管理", Path: "/admin/ingredients", Icon: "experiment"},
		{Title: "门店目录", Path: "/admin/catalogs", Icon: "table"},
	},
	RoleKitchenStaff: {
		{Title: "生产看板", Path: "/kitchen", Icon: "dashboard"},
		{Title: "生产计划", Path: "/kitchen/production", Icon: "schedule"},
		{Title: "库存", Path: "/kitchen/inventory", Icon: "database"},
		{Title: "配送排期", Path: "/kitchen/deliveries", Icon: "car"},
	},
	RoleStoreManager: {
		{Title: "门店看板", Path: "/store", Icon: "dashboard"},
		{Title: "订货", Path: "/store/orders", Icon: "shopping"},
		{Title: "商品目录", Path: "/store/catalog", Icon: "table"},
		{Title: "库存", Path: "/store/inventory", Icon: "database"},
	},
	RoleStoreStaff: {
		{Title: "门店看板", Path: "/store", Icon: "dashboard"},
		{Title: "订货", Path: "/store/orders", Icon: "shopping"},
		{Title: "库存", Path: "/store/inventory", Icon: "database"},
	},
}

// NavigationFor 角色可见的菜单
// 未知角色没有任何菜单
func NavigationFor(r Role) []MenuItem {
	return navigation[Parse(string(r))]
}

// HomePath 角色的默认落地路径
func HomePath(r Role) string {
	items := NavigationFor(r)
	if len(items) == 0 {
		return "/login"
	}
	return items[0].Path
}
