package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kitchensync/api"
	"github.com/kitchensync/api/model"
	"github.com/kitchensync/api/user"
	"github.com/kitchensync/pkg/config"
	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/logger"
	"github.com/kitchensync/pkg/querycache"
	"github.com/kitchensync/pkg/rbac"
	"github.com/kitchensync/pkg/response"
	"github.com/kitchensync/pkg/session"
	"go.uber.org/zap"
)

const usage = `用法: kitchenctl <命令> [参数]

命令:
  login <用户名> <密码>                   登录
  logout                                  登出
  whoami                                  当前会话信息
  nav                                     当前角色的导航菜单
  users [status]                          用户列表
  franchises                              加盟主体列表
  products [status]                       产品列表
  grant <roleId> <permId,permId,...>      调和角色权限到目标集合
  assign <userId> <franchiseId,...>       调和用户加盟主体到目标集合
`

func main() {
	// 加载配置
	if err := config.Init(os.Getenv("KITCHENSYNC_CONFIG")); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 会话存储
	sess, err := session.Open(&cfg.Session, &cfg.Redis)
	if err != nil {
		logger.Fatal("初始化会话存储失败", zap.Error(err))
	}
	defer sess.Close()

	sdk := api.New(api.Options{
		Config:  cfg,
		Session: sess,
		OnAuthFailure: func() {
			fmt.Println("登录已失效，请重新登录")
		},
	})
	defer sdk.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	if err := run(ctx, sdk, sess, os.Args[1], os.Args[2:]); err != nil {
		fmt.Printf("失败: %v\n", err)
		os.Exit(1)
	}
}

// run 执行子命令
func run(ctx context.Context, sdk *api.SDK, sess *session.Store, cmd string, args []string) error {
	switch cmd {
	case "login":
		if len(args) < 2 {
			return fmt.Errorf("用法: login <用户名> <密码>")
		}
		result, err := sdk.Auth.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("登录成功: %s (%s)\n", result.Username, result.Role)
		return nil

	case "logout":
		if err := sdk.Auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("已登出")
		return nil

	case "whoami":
		cur := sess.Get()
		if cur == nil {
			fmt.Println("未登录")
			return nil
		}
		fmt.Printf("%s (%s) userId=%d\n", cur.Username, cur.Role, cur.UserID)
		return nil

	case "nav":
		role := rbac.Parse(sess.Role())
		items := rbac.NavigationFor(role)
		if len(items) == 0 {
			fmt.Println("当前角色没有可见菜单")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%-12s %s\n", item.Title, item.Path)
			for _, child := range item.Children {
				fmt.Printf("  %-10s %s\n", child.Title, child.Path)
			}
		}
		return nil

	case "users":
		params := listParams(args)
		page, err := querycache.FetchAs(ctx, sdk.Cache, user.ListKey(params),
			func(ctx context.Context) (*response.Page[model.User], error) {
				return sdk.Users.List(ctx, params)
			})
		if err != nil {
			return err
		}
		for _, u := range page.Items {
			fmt.Printf("%-6d %-16s %-24s %-12s %s\n", u.UserID, u.Username, u.Email, u.RoleName, u.Status)
		}
		return nil

	case "franchises":
		franchises, err := sdk.CachedFranchises(ctx)
		if err != nil {
			return err
		}
		for _, f := range franchises {
			fmt.Printf("%-6d %-20s %-16s %s\n", f.FranchiseID, f.Name, f.Type, f.Status)
		}
		return nil

	case "products":
		params := listParams(args)
		page, err := sdk.Products.List(ctx, params)
		if err != nil {
			return err
		}
		for _, p := range page.Items {
			fmt.Printf("%-6d %-20s %10.2f %s\n", p.ProductID, p.Name, p.Price, p.Status)
		}
		return nil

	case "grant":
		if len(args) < 2 {
			return fmt.Errorf("用法: grant <roleId> <permId,permId,...>")
		}
		roleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("无效的roleId: %s", args[0])
		}
		desired, err := parseIDList(args[1])
		if err != nil {
			return err
		}
		if err := sdk.SetRolePermissions(ctx, roleID, desired); err != nil {
			return err
		}
		fmt.Println("角色权限已调和")
		return nil

	case "assign":
		if len(args) < 2 {
			return fmt.Errorf("用法: assign <userId> <franchiseId,...>")
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("无效的userId: %s", args[0])
		}
		desired, err := parseIDList(args[1])
		if err != nil {
			return err
		}
		u, err := sdk.Users.Detail(ctx, userID)
		if err != nil {
			return err
		}
		if err := sdk.SetUserFranchises(ctx, u, desired); err != nil {
			return err
		}
		fmt.Println("用户加盟主体已调和")
		return nil

	default:
		fmt.Print(usage)
		return fmt.Errorf("未知命令: %s", cmd)
	}
}

// listParams 从参数里取status过滤
func listParams(args []string) *httpc.ListParams {
	params := &httpc.ListParams{Page: 1, PageSize: 50}
	if len(args) > 0 && args[0] != "" {
		params.Status = strings.ToUpper(args[0])
	}
	return params
}

// parseIDList 解析逗号分隔的ID列表，空串表示空集合
func parseIDList(arg string) ([]int64, error) {
	if arg == "" || arg == "-" {
		return nil, nil
	}
	parts := strings.Split(arg, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("无效的ID: %s", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

