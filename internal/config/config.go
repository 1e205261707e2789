package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Session  SessionConfig  `mapstructure:"session"`
	Mail     MailConfig     `mapstructure:"mail"`
	Google   GoogleConfig   `mapstructure:"google"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug / release / test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres / sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent / error / warn / info
}

// LogConfig 日志
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console / json
}

// JWTConfig 令牌签发
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// AuthConfig 账号激活 / 密码重置
type AuthConfig struct {
	ActivationTTL       time.Duration `mapstructure:"activation_ttl"`
	ActivationURL       string        `mapstructure:"activation_url"`     // 含 {uid} {token} 占位符
	PasswordResetURL    string        `mapstructure:"password_reset_url"` // 含 {uid} {token} 占位符
	LoginRedirect       string        `mapstructure:"login_redirect"`
	SendActivationEmail bool          `mapstructure:"send_activation_email"`
	ResendInterval      time.Duration `mapstructure:"resend_interval"`

	// 超过该时长仍未激活的账号会被定时清理，0 表示不清理
	PurgeInactiveAfter time.Duration `mapstructure:"purge_inactive_after"`
}

// SessionConfig Cookie 会话（仅用于 flash 消息和浏览器登录页）
type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	Name   string `mapstructure:"name"`
}

// MailConfig SMTP，Host 为空时邮件只写日志
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// GoogleConfig 社交登录
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"` // 为空时拒绝所有 id_token
	TokenInfoURL string `mapstructure:"tokeninfo_url"`
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

// setDefaults 默认值，保证没有配置文件也能在本地跑起来
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=priceoye password=priceoye dbname=priceoye port=5432 sslmode=disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("jwt.secret", "priceoye-secret-key-change-in-production")
	v.SetDefault("jwt.issuer", "priceoye")
	v.SetDefault("jwt.access_ttl", 2*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("auth.activation_ttl", 72*time.Hour)
	v.SetDefault("auth.activation_url", "http://localhost:8080/activate/{uid}/{token}")
	v.SetDefault("auth.password_reset_url", "http://localhost:8080/password/reset/confirm/{uid}/{token}")
	v.SetDefault("auth.login_redirect", "/api-auth/login")
	v.SetDefault("auth.send_activation_email", true)
	v.SetDefault("auth.resend_interval", time.Minute)
	v.SetDefault("auth.purge_inactive_after", time.Duration(0))

	v.SetDefault("session.secret", "priceoye-session-key-change-in-production")
	v.SetDefault("session.name", "priceoye_session")

	// 空默认值也要注册，否则 AutomaticEnv 在 Unmarshal 时看不到这些 key
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "PriceOye <no-reply@priceoye.local>")

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.tokeninfo_url", "https://oauth2.googleapis.com/tokeninfo")
}

// Load 读取配置
// path 为空时在 . ./config /etc/priceoye 中查找 config.yaml，找不到就只用默认值和环境变量
// 环境变量前缀 PRICEOYE_，例如 PRICEOYE_DATABASE_DSN
func Load(path string) (*Config, error) {
	// .env 可选，不存在不报错
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/priceoye")
	}

	v.SetEnvPrefix("PRICEOYE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret 不能为空")
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret 不能为空")
	}
	return nil
}
