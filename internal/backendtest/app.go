package backendtest

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kitchensync/api/model"
	"github.com/kitchensync/pkg/response"
	"github.com/kitchensync/pkg/utils"
)

// ok 成功响应
func ok(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(response.OK(data))
}

// fail 失败响应
func fail(c *fiber.Ctx, status int, message, errorCode string) error {
	return c.Status(status).JSON(response.Fail(message, errorCode))
}

// buildApp 组装路由
func (s *Server) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// 调用计数 + 记录Bearer令牌
	app.Use(func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		s.mu.Lock()
		s.calls[c.Method()+" "+c.Route().Path]++
		if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			s.lastBearer = strings.TrimPrefix(h, "Bearer ")
		}
		s.mu.Unlock()
		return nil
	})

	api := app.Group("/api")
	api.Post("/auth/login", s.login)
	api.Post("/auth/logout", func(c *fiber.Ctx) error { return ok(c, nil) })

	// 除登录外的接口都要求有效令牌
	authed := func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		tok := strings.TrimPrefix(h, "Bearer ")
		s.mu.Lock()
		_, valid := s.tokens[tok]
		s.mu.Unlock()
		if h == "" || !valid {
			return fail(c, fiber.StatusUnauthorized, "未授权", "UNAUTHORIZED")
		}
		return c.Next()
	}

	api.Get("/products", authed, s.listProducts)
	api.Get("/products/:id", authed, s.getProduct)

	admin := api.Group("/admin", authed)
	admin.Get("/users", s.listUsers)
	admin.Get("/users/:id", s.getUser)
	admin.Put("/users/:id", s.updateUser)
	admin.Get("/users/:userId/franchises", s.listUserFranchises)
	admin.Post("/users/:userId/franchises/:franchiseId", s.assignUserFranchise)
	admin.Delete("/users/:userId/franchises/:franchiseId", s.removeUserFranchise)
	admin.Get("/franchises", s.listFranchises)
	admin.Get("/franchises/all", s.allFranchises)
	admin.Get("/permissions/all", s.allPermissions)
	admin.Get("/roles/:roleId/permissions", s.listRolePermissions)
	admin.Post("/roles/:roleId/permissions/:permissionId", s.assignRolePermission)
	admin.Delete("/roles/:roleId/permissions/:permissionId", s.removeRolePermission)

	return app
}

// login 登录
func (s *Server) login(c *fiber.Ctx) error {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "请求格式错误", "BAD_REQUEST")
	}

	s.mu.Lock()
	account, okAcc := s.accounts[req.UsernameOrEmail]
	s.mu.Unlock()
	if !okAcc || account.Password != req.Password {
		return fail(c, fiber.StatusUnauthorized, "用户名或密码错误", "INVALID_CREDENTIALS")
	}

	accessToken := s.issueToken(account)
	return ok(c, fiber.Map{
		"accessToken":      accessToken,
		"refreshToken":     utils.UUIDWithoutDash(),
		"tokenType":        "Bearer",
		"expiresInSeconds": 3600,
		"userId":           account.UserID,
		"username":         account.Username,
		"role":             account.Role,
	})
}

// issueToken 签发令牌并登记为有效
func (s *Server) issueToken(account *Account) string {
	claims := jwt.MapClaims{
		"userId":   account.UserID,
		"username": account.Username,
		"role":     account.Role,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)

	s.mu.Lock()
	s.tokens[tok] = account
	s.mu.Unlock()
	return tok
}

// RevokeTokens 吊销全部令牌，后续请求都会收到401
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]*Account)
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	s.mu.Lock()
	items := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		items = append(items, *u)
	}
	s.mu.Unlock()
	return ok(c, response.NewPage(items, pageOf(c), pageSizeOf(c), int64(len(items))))
}

func (s *Server) getUser(c *fiber.Ctx) error {
	s.mu.Lock()
	u, exists := s.users[parseID(c, "id")]
	s.mu.Unlock()
	if !exists {
		return fail(c, fiber.StatusNotFound, "用户不存在", "NOT_FOUND")
	}
	return ok(c, u)
}

func (s *Server) updateUser(c *fiber.Ctx) error {
	var req struct {
		RoleID *int64        `json:"roleId"`
		Status *model.Status `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "请求格式错误", "BAD_REQUEST")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[parseID(c, "id")]
	if !exists {
		return fail(c, fiber.StatusNotFound, "用户不存在", "NOT_FOUND")
	}
	if req.RoleID != nil {
		u.RoleID = *req.RoleID
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	return ok(c, u)
}

func (s *Server) listFranchises(c *fiber.Ctx) error {
	s.mu.Lock()
	items := make([]model.Franchise, 0, len(s.franchises))
	for _, f := range s.franchises {
		items = append(items, *f)
	}
	s.mu.Unlock()
	return ok(c, response.NewPage(items, pageOf(c), pageSizeOf(c), int64(len(items))))
}

func (s *Server) allFranchises(c *fiber.Ctx) error {
	s.mu.Lock()
	items := make([]model.Franchise, 0, len(s.franchises))
	for _, f := range s.franchises {
		items = append(items, *f)
	}
	s.mu.Unlock()
	return ok(c, items)
}

func (s *Server) allPermissions(c *fiber.Ctx) error {
	s.mu.Lock()
	items := make([]model.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		items = append(items, *p)
	}
	s.mu.Unlock()
	return ok(c, items)
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	s.mu.Lock()
	items := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		// status过滤是测试里唯一用到的列表参数
		if st := c.Query("status"); st != "" && string(p.Status) != st {
			continue
		}
		items = append(items, *p)
	}
	s.mu.Unlock()
	return ok(c, response.NewPage(items, pageOf(c), pageSizeOf(c), int64(len(items))))
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	s.mu.Lock()
	p, exists := s.products[parseID(c, "id")]
	s.mu.Unlock()
	if !exists {
		return fail(c, fiber.StatusNotFound, "产品不存在", "NOT_FOUND")
	}
	return ok(c, p)
}

func (s *Server) listRolePermissions(c *fiber.Ctx) error {
	s.mu.Lock()
	ids := setToSlice(s.rolePermits[parseID(c, "roleId")])
	s.mu.Unlock()
	return ok(c, ids)
}

func (s *Server) assignRolePermission(c *fiber.Ctx) error {
	roleID, permID := parseID(c, "roleId"), parseID(c, "permissionId")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rolePermits[roleID] == nil {
		s.rolePermits[roleID] = make(map[int64]struct{})
	}
	s.rolePermits[roleID][permID] = struct{}{}
	return ok(c, nil)
}

func (s *Server) removeRolePermission(c *fiber.Ctx) error {
	roleID, permID := parseID(c, "roleId"), parseID(c, "permissionId")
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rolePermits[roleID], permID)
	return ok(c, nil)
}

func (s *Server) listUserFranchises(c *fiber.Ctx) error {
	s.mu.Lock()
	ids := setToSlice(s.userFranchises[parseID(c, "userId")])
	s.mu.Unlock()
	return ok(c, ids)
}

func (s *Server) assignUserFranchise(c *fiber.Ctx) error {
	userID, franchiseID := parseID(c, "userId"), parseID(c, "franchiseId")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userFranchises[userID] == nil {
		s.userFranchises[userID] = make(map[int64]struct{})
	}
	s.userFranchises[userID][franchiseID] = struct{}{}
	return ok(c, nil)
}

func (s *Server) removeUserFranchise(c *fiber.Ctx) error {
	userID, franchiseID := parseID(c, "userId"), parseID(c, "franchiseId")
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userFranchises[userID], franchiseID)
	return ok(c, nil)
}

func pageOf(c *fiber.Ctx) int {
	return c.QueryInt("page", 1)
}

func pageSizeOf(c *fiber.Ctx) int {
	return c.QueryInt("pageSize", 20)
}
