package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string
	Port        string // 内容服务端口
	WebPort     string // 展示服务端口

	// 数据库配置
	DBDriver    string // pgx | postgres | sqlite3
	PostgresDSN string
	SQLitePath  string

	// 认证配置
	JWTSecret        string
	APIToken         string // 展示层调用内容服务时携带的 bearer token
	AdminSecret      string
	RevalidateSecret string
	PreviewSecret    string

	// 内容服务
	CMSURL                string
	HeaderSectionPopulate bool

	// 站点
	SiteURL   string
	SiteName  string
	ClientURL string
	CSP       string

	// 邮件通知
	ResendAPIKey          string
	ResendFromEmail       string
	WeddingOrganizerEmail string
	ContactEmail          string
	CompanyName           string

	// 联系表单限流
	ContactRateLimit     int
	ContactRateWindow    time.Duration
	ContactSweepInterval time.Duration

	// 语言缓存
	LocalesCacheTTL time.Duration

	// CORS配置
	AllowedOrigins []string

	// 调试配置
	Debug bool
}

// LoadConfig 加载配置（.env 文件 + 环境变量，环境变量优先）
func LoadConfig() *Config {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	setDefaults(v)

	switch env {
	case "production":
		readEnvFile(v, ".env.production")
	default:
		readEnvFile(v, ".env.local")
	}
	v.AutomaticEnv()

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		WebPort:     v.GetString("WEB_PORT"),
		DBDriver:    strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		// Trim whitespace to avoid trailing spaces/newlines from env sources
		PostgresDSN: strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		SQLitePath:  strings.TrimSpace(v.GetString("SQLITE_PATH")),

		JWTSecret:        v.GetString("JWT_SECRET"),
		APIToken:         strings.TrimSpace(v.GetString("API_TOKEN")),
		AdminSecret:      v.GetString("ADMIN_SECRET"),
		RevalidateSecret: v.GetString("REVALIDATE_SECRET"),
		PreviewSecret:    v.GetString("PREVIEW_SECRET"),

		CMSURL:                strings.TrimRight(strings.TrimSpace(v.GetString("CMS_URL")), "/"),
		HeaderSectionPopulate: v.GetBool("HEADER_SECTION_POPULATE"),

		SiteURL:   strings.TrimRight(strings.TrimSpace(v.GetString("SITE_URL")), "/"),
		SiteName:  v.GetString("SITE_NAME"),
		ClientURL: strings.TrimSpace(v.GetString("CLIENT_URL")),
		CSP:       strings.TrimSpace(v.GetString("CSP")),

		ResendAPIKey:          strings.TrimSpace(v.GetString("RESEND_API_KEY")),
		ResendFromEmail:       v.GetString("RESEND_FROM_EMAIL"),
		WeddingOrganizerEmail: strings.TrimSpace(v.GetString("WEDDING_ORGANIZER_EMAIL")),
		ContactEmail:          v.GetString("CONTACT_EMAIL"),
		CompanyName:           v.GetString("COMPANY_NAME"),

		ContactRateLimit:     v.GetInt("CONTACT_RATE_LIMIT"),
		ContactRateWindow:    v.GetDuration("CONTACT_RATE_WINDOW"),
		ContactSweepInterval: v.GetDuration("CONTACT_SWEEP_INTERVAL"),
		LocalesCacheTTL:      v.GetDuration("LOCALES_CACHE_TTL"),

		Debug: v.GetBool("DEBUG"),
	}

	// CORS配置
	if origins := strings.TrimSpace(v.GetString("ALLOWED_ORIGINS")); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, o)
			}
		}
	}

	// 生产环境关闭调试
	if config.Environment == "production" {
		config.Debug = false
	}

	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "1337")
	v.SetDefault("WEB_PORT", "3000")
	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("SQLITE_PATH", "wedding.db")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("CMS_URL", "http://localhost:1337")
	v.SetDefault("HEADER_SECTION_POPULATE", true)
	v.SetDefault("SITE_URL", "http://localhost:3000")
	v.SetDefault("SITE_NAME", "Mariage")
	v.SetDefault("RESEND_FROM_EMAIL", "onboarding@resend.dev")
	v.SetDefault("CONTACT_EMAIL", "contact@votre-domaine.com")
	v.SetDefault("COMPANY_NAME", "Contact")
	v.SetDefault("CONTACT_RATE_LIMIT", 3)
	v.SetDefault("CONTACT_RATE_WINDOW", 5*time.Minute)
	v.SetDefault("CONTACT_SWEEP_INTERVAL", time.Minute)
	v.SetDefault("LOCALES_CACHE_TTL", time.Hour)
	v.SetDefault("DEBUG", false)
}

// readEnvFile 读取 dotenv 文件，文件不存在时静默返回
func readEnvFile(v *viper.Viper, filename string) {
	if _, err := os.Stat(filename); err != nil {
		return
	}
	v.SetConfigFile(filename)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot read %s: %v\n", filename, err)
	}
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless (Vercel), it initializes once per cold start and
// reuses it across warm invocations, avoiding per-request parsing.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

const defaultJWTSecret = "your-secret-key-change-in-production"

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port == "" || c.WebPort == "" {
		return errors.New("PORT and WEB_PORT are required")
	}

	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
	}

	switch c.DBDriver {
	case "pgx", "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for DB_DRIVER=%s", c.DBDriver)
		}
	case "sqlite3":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for DB_DRIVER=sqlite3")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.ContactRateLimit <= 0 || c.ContactRateWindow <= 0 {
		return errors.New("CONTACT_RATE_LIMIT and CONTACT_RATE_WINDOW must be positive")
	}

	return nil
}

// UsingDefaultJWTSecret reports whether the placeholder secret is in use.
func (c *Config) UsingDefaultJWTSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// MailEnabled 是否配置了邮件服务
func (c *Config) MailEnabled() bool {
	return c.ResendAPIKey != ""
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
