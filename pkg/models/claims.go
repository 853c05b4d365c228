package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in TokenClaims.Type
const (
	TokenTypeAPI   = "api"   // 内容服务 CRUD 调用方
	TokenTypeAdmin = "admin" // 展示层管理员会话 cookie
)

// Principal is the authenticated caller stored in the request context.
type Principal struct {
	Subject string `json:"subject"`
	Type    string `json:"type"`
}

// TokenClaims represents the JWT token claims
type TokenClaims struct {
	Subject string `json:"sub"`
	Type    string `json:"type"`
	Exp     int64  `json:"exp,omitempty"` // 0 表示不过期（API token）
	Iat     int64  `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.Exp == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "wedding-site", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.Subject, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
