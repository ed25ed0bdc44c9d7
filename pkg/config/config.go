package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	once   sync.Once
	config *Config
)

// Config 全局配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// APIConfig 后端接口配置
type APIConfig struct {
	Origin         string `mapstructure:"origin"`         // 后端地址 例如 https://api.example.com
	Prefix         string `mapstructure:"prefix"`         // 通用接口前缀
	AdminPrefix    string `mapstructure:"adminPrefix"`    // 管理接口前缀
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"` // 单次请求超时
}

// BaseURL 通用接口根地址
func (c *APIConfig) BaseURL() string {
	return c.Origin + c.Prefix
}

// AdminBaseURL 管理接口根地址
func (c *APIConfig) AdminBaseURL() string {
	return c.Origin + c.AdminPrefix
}

// CacheConfig 查询缓存配置
type CacheConfig struct {
	StaleSeconds     int `mapstructure:"staleSeconds"`     // 读取结果视为新鲜的时长
	RetentionSeconds int `mapstructure:"retentionSeconds"` // 闲置条目保留时长
	CleanupSeconds   int `mapstructure:"cleanupSeconds"`   // 过期清理间隔
	RetryCount       int `mapstructure:"retryCount"`       // 读取失败的重试次数
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	Driver string `mapstructure:"driver"` // file / sqlite / redis / memory
	Path   string `mapstructure:"path"`   // file/sqlite 模式的存储路径
	Prefix string `mapstructure:"prefix"` // redis 模式的 key 前缀
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"poolSize"`
	Mode     string `mapstructure:"mode"` // "standalone" 外部 Redis, "memory" 内存模式
}

// Addr 获取Redis地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAge     int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		config = &Config{}
		err = loadConfig(configPath)
	})
	return err
}

// loadConfig 加载配置文件
func loadConfig(configPath string) error {
	v := viper.New()

	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
	}

	// 读取环境变量
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 读取配置文件（客户端允许无配置文件，全部走默认值）
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析配置到结构体
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 处理环境变量占位符
	resolveEnvVars(config)

	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "kitchensync")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.version", "v1.0.0")

	v.SetDefault("api.origin", "http://localhost:8080")
	v.SetDefault("api.prefix", "/api")
	v.SetDefault("api.adminPrefix", "/api/admin")
	v.SetDefault("api.timeoutSeconds", 15)

	v.SetDefault("cache.staleSeconds", 300)
	v.SetDefault("cache.retentionSeconds", 600)
	v.SetDefault("cache.cleanupSeconds", 60)
	v.SetDefault("cache.retryCount", 1)

	v.SetDefault("session.driver", "file")
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("session.prefix", "kitchensync:session")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.mode", "standalone")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// defaultSessionPath 默认会话文件路径
func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kitchensync/session.json"
	}
	return home + "/.kitchensync/session.json"
}

// resolveEnvVars 解析环境变量占位符
func resolveEnvVars(cfg *Config) {
	cfg.API.Origin = resolveEnvVar(cfg.API.Origin)
	cfg.Redis.Host = resolveEnvVar(cfg.Redis.Host)
	cfg.Redis.Password = resolveEnvVar(cfg.Redis.Password)
}

// resolveEnvVar 解析单个环境变量
func resolveEnvVar(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envKey := strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}")
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return value
}

// Get 获取配置实例
func Get() *Config {
	if config == nil {
		panic("config not initialized, call Init first")
	}
	return config
}

// GetAPI 获取接口配置
func GetAPI() *APIConfig {
	return &Get().API
}

// GetCache 获取缓存配置
func GetCache() *CacheConfig {
	return &Get().Cache
}

// GetSession 获取会话配置
func GetSession() *SessionConfig {
	return &Get().Session
}

// GetRedis 获取Redis配置
func GetRedis() *RedisConfig {
	return &Get().Redis
}

// GetLog 获取日志配置
func GetLog() *LogConfig {
	return &Get().Log
}

// IsDev 是否为开发环境
func IsDev() bool {
	return Get().App.Env == "dev" || Get().App.Env == "development"
}
