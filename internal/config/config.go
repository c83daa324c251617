package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 聚合应用全部配置，启动时一次性加载。
type Config struct {
	API      APIConfig
	Database DatabaseConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Autosave AutosaveConfig
}

// APIConfig HTTP 服务相关配置。
type APIConfig struct {
	Port            string
	GinMode         string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// DatabaseConfig PostgreSQL 连接配置。
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// DSN 拼接 GORM 使用的连接串。
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.TimeZone,
	)
}

// RedisConfig Redis 连接配置，限流、令牌黑名单与通知通道共用。
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr 返回 host:port 形式的地址。
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// MinIOConfig 对象存储配置。
type MinIOConfig struct {
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	Bucket           string
	UseSSL           bool
	AutoCreateBucket bool
}

// AuthConfig 认证相关配置。
type AuthConfig struct {
	PrivateKeyPath  string
	PublicKeyPath   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieDomain    string
	LoginRatePerHr  int
}

// UploadConfig 头像上传的安全限制。
type UploadConfig struct {
	ClamdAddr     string
	MaxBytes      int64
	MIMEWhitelist []string
}

// AutosaveConfig 简历草稿自动保存的节流配置。
type AutosaveConfig struct {
	Debounce time.Duration
}

// Load 从环境变量加载配置并校验必填项。
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad 加载配置，失败时 panic。仅供 main 使用。
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.ginmode", "release")
	v.SetDefault("api.corsorigins", []string{"http://localhost:3000"})
	v.SetDefault("api.shutdowntimeout", 10*time.Second)

	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")

	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("minio.bucket", "careernav-assets")
	v.SetDefault("minio.usessl", false)
	v.SetDefault("minio.autocreatebucket", true)

	v.SetDefault("auth.accesstokenttl", 15*time.Minute)
	v.SetDefault("auth.refreshtokenttl", 7*24*time.Hour)
	v.SetDefault("auth.loginrateperhr", 10)

	v.SetDefault("upload.clamdaddr", "tcp://localhost:3310")
	v.SetDefault("upload.maxbytes", int64(5*1024*1024))
	v.SetDefault("upload.mimewhitelist", []string{"image/png", "image/jpeg", "image/webp"})

	v.SetDefault("autosave.debounce", 2*time.Second)
}

func bindEnv(v *viper.Viper) {
	// 显式绑定，保证 Unmarshal 能看到所有环境变量。
	_ = v.BindEnv("api.port", "API_PORT")
	_ = v.BindEnv("api.ginmode", "GIN_MODE")
	_ = v.BindEnv("api.corsorigins", "CORS_ORIGINS")
	_ = v.BindEnv("api.shutdowntimeout", "API_SHUTDOWN_TIMEOUT")

	_ = v.BindEnv("database.host", "DATABASE_HOST")
	_ = v.BindEnv("database.port", "DATABASE_PORT")
	_ = v.BindEnv("database.user", "POSTGRES_USER")
	_ = v.BindEnv("database.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.name", "POSTGRES_DB")
	_ = v.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	_ = v.BindEnv("database.timezone", "DATABASE_TIMEZONE")

	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")

	_ = v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	_ = v.BindEnv("minio.accesskeyid", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("minio.secretaccesskey", "MINIO_SECRET_KEY")
	_ = v.BindEnv("minio.bucket", "MINIO_BUCKET")
	_ = v.BindEnv("minio.usessl", "MINIO_USE_SSL")
	_ = v.BindEnv("minio.autocreatebucket", "MINIO_AUTO_CREATE_BUCKET")

	_ = v.BindEnv("auth.privatekeypath", "JWT_PRIVATE_KEY_PATH")
	_ = v.BindEnv("auth.publickeypath", "JWT_PUBLIC_KEY_PATH")
	_ = v.BindEnv("auth.accesstokenttl", "AUTH_ACCESS_TOKEN_TTL")
	_ = v.BindEnv("auth.refreshtokenttl", "AUTH_REFRESH_TOKEN_TTL")
	_ = v.BindEnv("auth.cookiedomain", "AUTH_COOKIE_DOMAIN")
	_ = v.BindEnv("auth.loginrateperhr", "AUTH_LOGIN_RATE_PER_HOUR")

	_ = v.BindEnv("upload.clamdaddr", "CLAMD_ADDR")
	_ = v.BindEnv("upload.maxbytes", "UPLOAD_MAX_BYTES")
	_ = v.BindEnv("upload.mimewhitelist", "UPLOAD_MIME_WHITELIST")

	_ = v.BindEnv("autosave.debounce", "AUTOSAVE_DEBOUNCE")
}

func validate(cfg *Config) error {
	var missing []string
	if cfg.Database.Host == "" {
		missing = append(missing, "DATABASE_HOST")
	}
	if cfg.Database.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Database.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Database.Name == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if cfg.Redis.Host == "" {
		missing = append(missing, "REDIS_HOST")
	}
	if cfg.MinIO.Endpoint == "" {
		missing = append(missing, "MINIO_ENDPOINT")
	}
	if cfg.MinIO.AccessKeyID == "" {
		missing = append(missing, "MINIO_ACCESS_KEY")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		missing = append(missing, "MINIO_SECRET_KEY")
	}
	if cfg.Auth.PrivateKeyPath == "" {
		missing = append(missing, "JWT_PRIVATE_KEY_PATH")
	}
	if cfg.Auth.PublicKeyPath == "" {
		missing = append(missing, "JWT_PUBLIC_KEY_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if cfg.Autosave.Debounce <= 0 {
		return fmt.Errorf("AUTOSAVE_DEBOUNCE must be positive, got %s", cfg.Autosave.Debounce)
	}
	return nil
}
