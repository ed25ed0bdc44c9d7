// Package backendtest 提供测试用的进程内后端
// 实现SDK依赖的接口子集和统一响应结构，运行在随机端口上
package backendtest

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kitchensync/api/model"
)

// Account 预置账号
type Account struct {
	UserID   int64
	Username string
	Password string
	Role     string
}

// Server 测试后端
type Server struct {
	mu       sync.Mutex
	app      *fiber.App
	listener net.Listener

	secret   []byte
	accounts map[string]*Account // username → account
	tokens   map[string]*Account // accessToken → account

	users          map[int64]*model.User
	franchises     map[int64]*model.Franchise
	products       map[int64]*model.Product
	rolePermits    map[int64]map[int64]struct{} // roleID → permissionIDs
	userFranchises map[int64]map[int64]struct{} // userID → franchiseIDs
	permissions    map[int64]*model.Permission

	calls      map[string]int // "METHOD path-pattern" → 次数
	lastBearer string
}

// New 创建测试后端
func New() *Server {
	s := &Server{
		secret:         []byte("backendtest-secret"),
		accounts:       make(map[string]*Account),
		tokens:         make(map[string]*Account),
		users:          make(map[int64]*model.User),
		franchises:     make(map[int64]*model.Franchise),
		products:       make(map[int64]*model.Product),
		rolePermits:    make(map[int64]map[int64]struct{}),
		userFranchises: make(map[int64]map[int64]struct{}),
		permissions:    make(map[int64]*model.Permission),
		calls:          make(map[string]int),
	}
	s.app = s.buildApp()
	return s
}

// Start 在随机端口上启动
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	s.listener = ln

	go func() {
		_ = s.app.Listener(ln)
	}()

	// 等待fiber接管listener
	time.Sleep(50 * time.Millisecond)
	return nil
}

// URL 后端地址
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Close 关闭后端
func (s *Server) Close() error {
	return s.app.Shutdown()
}

// SeedAccount 预置账号
func (s *Server) SeedAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := a
	s.accounts[a.Username] = &cp
}

// SeedUser 预置用户
func (s *Server) SeedUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[u.UserID] = &cp
}

// SeedFranchise 预置加盟主体
func (s *Server) SeedFranchise(f model.Franchise) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := f
	s.franchises[f.FranchiseID] = &cp
}

// SeedProduct 预置产品
func (s *Server) SeedProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.products[p.ProductID] = &cp
}

// SeedPermission 预置权限
func (s *Server) SeedPermission(p model.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.permissions[p.PermissionID] = &cp
}

// SeedRolePermissions 预置角色权限关联
func (s *Server) SeedRolePermissions(roleID int64, permissionIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		set[id] = struct{}{}
	}
	s.rolePermits[roleID] = set
}

// SeedUserFranchises 预置用户加盟主体关联
func (s *Server) SeedUserFranchises(userID int64, franchiseIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[int64]struct{}, len(franchiseIDs))
	for _, id := range franchiseIDs {
		set[id] = struct{}{}
	}
	s.userFranchises[userID] = set
}

// Calls 指定路由的调用次数，key形如 "POST /api/admin/roles/:roleId/permissions/:permissionId"
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// TotalCalls 全部接口调用总数（登录除外）
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for key, n := range s.calls {
		if strings.Contains(key, "/auth/login") {
			continue
		}
		total += n
	}
	return total
}

// RolePermissionIDs 角色当前的权限ID集合
func (s *Server) RolePermissionIDs(roleID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setToSlice(s.rolePermits[roleID])
}

// UserFranchiseIDs 用户当前的加盟主体ID集合
func (s *Server) UserFranchiseIDs(userID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setToSlice(s.userFranchises[userID])
}

// LastBearer 最近一次请求携带的Bearer令牌
func (s *Server) LastBearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBearer
}

func setToSlice(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

func parseID(c *fiber.Ctx, name string) int64 {
	id, _ := strconv.ParseInt(c.Params(name), 10, 64)
	return id
}
