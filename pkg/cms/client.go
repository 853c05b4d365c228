// Package cms is the presentation tier's HTTP client for the content service.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-site/pkg/models"
)

// DefaultTimeout 内容服务请求超时
const DefaultTimeout = 10 * time.Second

// StatusError 内容服务返回的非 2xx 响应
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content service responded %d: %s", e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 from the content service.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// envelope mirrors utils.APIResponse on the wire.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type pageEntry struct {
	pages     []models.Page
	fetchedAt time.Time
}

// Client 内容服务客户端
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	log        zerolog.Logger

	pageTTL time.Duration
	mu      sync.RWMutex
	pages   map[string]pageEntry
	now     func() time.Time
}

// Option 客户端配置项
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageTTL sets how long page lookups are cached. Zero disables caching.
func WithPageTTL(ttl time.Duration) Option {
	return func(c *Client) { c.pageTTL = ttl }
}

// NewClient 创建内容服务客户端
func NewClient(baseURL, apiToken string, log zerolog.Logger, opts ...Option) *Client {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "http://" + baseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        log,
		pageTTL:    time.Minute,
		pages:      make(map[string]pageEntry),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the content service origin.
func (c *Client) BaseURL() string { return c.baseURL }

// AbsoluteURL prefixes relative media URLs with the content service origin.
func (c *Client) AbsoluteURL(u string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "//") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.baseURL + u
}

// do 发送请求并返回状态码与原始响应体
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, auth bool) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// getData performs a request and decodes the envelope's data into out.
func (c *Client) getData(ctx context.Context, method, endpoint string, payload interface{}, auth bool, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	status, respBody, err := c.do(ctx, method, endpoint, body, auth)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &StatusError{Code: status, Body: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// Locales 获取内容服务配置的语言
func (c *Client) Locales(ctx context.Context) ([]models.Locale, error) {
	var locales []models.Locale
	if err := c.getData(ctx, http.MethodGet, "/api/i18n/locales", nil, false, &locales); err != nil {
		return nil, err
	}
	return locales, nil
}

// Header 获取头部，populate 为 "page" 或 "section"
func (c *Client) Header(ctx context.Context, locale, populate string) (*models.Header, error) {
	q := url.Values{}
	q.Set("locale", locale)
	if populate != "" {
		q.Set("populate", populate)
	}
	var h models.Header
	if err := c.getData(ctx, http.MethodGet, "/api/header?"+q.Encode(), nil, false, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// FindPages looks pages up by slug; an empty locale searches every locale.
// Results are cached per slug and locale until InvalidatePages.
func (c *Client) FindPages(ctx context.Context, slug, locale string) ([]models.Page, error) {
	key := slug + "|" + locale
	if c.pageTTL > 0 {
		c.mu.RLock()
		entry, ok := c.pages[key]
		c.mu.RUnlock()
		if ok && c.now().Sub(entry.fetchedAt) < c.pageTTL {
			return entry.pages, nil
		}
	}

	q := url.Values{}
	q.Set("slug", slug)
	if locale != "" {
		q.Set("locale", locale)
	}
	q.Set("populate", "sections")

	var pages []models.Page
	if err := c.getData(ctx, http.MethodGet, "/api/pages?"+q.Encode(), nil, false, &pages); err != nil {
		return nil, err
	}
	for i := range pages {
		pages[i].SortSections()
	}

	if c.pageTTL > 0 {
		c.mu.Lock()
		c.pages[key] = pageEntry{pages: pages, fetchedAt: c.now()}
		c.mu.Unlock()
	}
	return pages, nil
}

// InvalidatePages 清空页面缓存
func (c *Client) InvalidatePages() {
	c.mu.Lock()
	c.pages = make(map[string]pageEntry)
	c.mu.Unlock()
}

// PageSections returns the sections of the first page matching slug in locale.
func (c *Client) PageSections(ctx context.Context, slug, locale string) ([]models.Section, error) {
	pages, err := c.FindPages(ctx, slug, locale)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return pages[0].Sections, nil
}

// GuestByToken 根据邀请 token 获取宾客
func (c *Client) GuestByToken(ctx context.Context, token string) (*models.GuestProjection, error) {
	var g models.GuestProjection
	if err := c.getData(ctx, http.MethodGet, "/api/guests/by-token/"+url.PathEscape(token), nil, false, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// RelayRSVP forwards a raw RSVP body and hands back the upstream status and body untouched.
func (c *Client) RelayRSVP(ctx context.Context, token string, body []byte) (int, []byte, error) {
	return c.do(ctx, http.MethodPut, "/api/guests/by-token/"+url.PathEscape(token)+"/rsvp", bytes.NewReader(body), false)
}

// ListGuests 管理端获取宾客列表（含婚礼信息）
func (c *Client) ListGuests(ctx context.Context, limit int) ([]models.Guest, error) {
	q := url.Values{}
	q.Set("populate", "wedding")
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var guests []models.Guest
	if err := c.getData(ctx, http.MethodGet, "/api/guests?"+q.Encode(), nil, true, &guests); err != nil {
		return nil, err
	}
	return guests, nil
}

// Ping 检查内容服务是否可达
func (c *Client) Ping(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, "/healthz", nil, false)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &StatusError{Code: status, Body: string(body)}
	}
	return nil
}
