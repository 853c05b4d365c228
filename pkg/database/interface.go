package database

import (
	"context"
	"fmt"
	"time"

	"wedding-site/pkg/models"
)

// DatabaseInterface 定义数据库访问接口
type DatabaseInterface interface {
	// 宾客
	CreateGuest(ctx context.Context, g *models.Guest) error
	GetGuest(ctx context.Context, id int64) (*models.Guest, error)
	GetGuestByToken(ctx context.Context, token string, withWedding bool) (*models.Guest, error)
	ListGuests(ctx context.Context, filter GuestFilter) ([]models.Guest, error)
	UpdateGuest(ctx context.Context, g *models.Guest) error
	// RecordRSVP overwrites the response fields of one guest.
	RecordRSVP(ctx context.Context, guestID int64, resp RSVPUpdate) error
	DeleteGuest(ctx context.Context, id int64) error

	// 婚礼
	CreateWedding(ctx context.Context, w *models.Wedding) error
	GetWedding(ctx context.Context, id int64) (*models.Wedding, error)
	ListWeddings(ctx context.Context) ([]models.Wedding, error)

	// 页面与头部导航
	CreatePage(ctx context.Context, p *models.Page) error
	FindPages(ctx context.Context, filter PageFilter) ([]models.Page, error)
	GetHeader(ctx context.Context, locale string, populate NavPopulate) (*models.Header, error)
	SaveHeader(ctx context.Context, in models.HeaderInput) (*models.Header, error)

	// 语言
	ListLocales(ctx context.Context) ([]models.Locale, error)
	UpsertLocale(ctx context.Context, l models.Locale) error

	// Migrate creates missing tables and seeds the default locales.
	Migrate(ctx context.Context) error

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 关闭连接
	Close() error
}

// GuestFilter 宾客列表过滤条件
type GuestFilter struct {
	WeddingID   *int64
	WithWedding bool
	Limit       int
}

// PageFilter 页面查询条件；空字段表示不过滤
type PageFilter struct {
	Slug         string
	Locale       string
	WithSections bool
}

// NavPopulate selects which relation of the navigation items gets populated.
type NavPopulate int

const (
	PopulatePage NavPopulate = 1 << iota
	PopulateSection
	PopulateAll = PopulatePage | PopulateSection
)

// RSVPUpdate 宾客回复写入内容（整体覆盖）
type RSVPUpdate struct {
	Status           models.RSVPStatus
	PartnerAttending *bool
	Message          *string
	RespondedAt      time.Time
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver      string // pgx | postgres | sqlite3
	PostgresDSN string
	SQLitePath  string
	Debug       bool
}

// NewDatabase 根据配置选择数据库实现
func NewDatabase(ctx context.Context, config DatabaseConfig) (DatabaseInterface, error) {
	switch config.Driver {
	case "pgx", "postgres":
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres driver %q requires a DSN", config.Driver)
		}
		return NewPostgresDatabase(ctx, config.Driver, config.PostgresDSN)
	case "sqlite3", "":
		return NewSQLiteDatabase(ctx, config.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
}
