package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wedding-site/pkg/models"
)

// JWTService JWT服务
type JWTService struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

// IssueAPIToken 生成内容服务 API token（不过期，轮换 JWT_SECRET 即失效）
func (j *JWTService) IssueAPIToken(subject string) (string, error) {
	return j.sign(&models.TokenClaims{
		Subject: subject,
		Type:    models.TokenTypeAPI,
		Iat:     j.now().Unix(),
	})
}

// IssueAdminSession 生成管理员会话 token
func (j *JWTService) IssueAdminSession(ttl time.Duration) (string, error) {
	now := j.now()
	return j.sign(&models.TokenClaims{
		Subject: "admin",
		Type:    models.TokenTypeAdmin,
		Iat:     now.Unix(),
		Exp:     now.Add(ttl).Unix(),
	})
}

func (j *JWTService) sign(claims *models.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken 验证令牌并检查类型
func (j *JWTService) ValidateToken(tokenString, wantType string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.Type != wantType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", wantType, claims.Type)
	}

	return claims, nil
}
