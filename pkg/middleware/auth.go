package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"wedding-site/pkg/models"
	"wedding-site/pkg/utils"
)

// ContextKey 用于在context中存储调用方信息的键
type ContextKey string

const (
	PrincipalContextKey ContextKey = "principal"
)

// AdminCookieName 管理员会话 cookie
const AdminCookieName = "admin_auth"

// TokenValidator is satisfied by utils.JWTService.
type TokenValidator interface {
	ValidateToken(token, wantType string) (*models.TokenClaims, error)
}

// APITokenAuth 内容服务 bearer token 认证
func APITokenAuth(tokens TokenValidator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteUnauthorizedResponse(w, "Missing authorization header")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
				return
			}

			claims, err := tokens.ValidateToken(tokenString, models.TokenTypeAPI)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("api token rejected")
				utils.WriteUnauthorizedResponse(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), claims)))
		})
	}
}

// AdminSession 校验管理员 cookie
func AdminSession(tokens TokenValidator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AdminCookieName)
			if err != nil || cookie.Value == "" {
				utils.WriteUnauthorizedResponse(w, "Non autorisé")
				return
			}

			claims, err := tokens.ValidateToken(cookie.Value, models.TokenTypeAdmin)
			if err != nil {
				log.Debug().Err(err).Msg("admin session rejected")
				utils.WriteUnauthorizedResponse(w, "Non autorisé")
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), claims)))
		})
	}
}

func withPrincipal(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, &models.Principal{Subject: claims.Subject, Type: claims.Type})
}

// GetPrincipal 从context中获取调用方
func GetPrincipal(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(*models.Principal)
	return p, ok && p != nil
}
