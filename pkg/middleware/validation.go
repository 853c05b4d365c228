package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"wedding-site/pkg/models"
	"wedding-site/pkg/ratelimit"
	"wedding-site/pkg/utils"
)

// ContentTypeJSON 验证请求Content-Type为application/json
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 只对带请求体的方法验证Content-Type
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				utils.WriteBadRequestResponse(w, "Content-Type header is required")
				return
			}
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				utils.WriteBadRequestResponse(w, "Content-Type must be application/json")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// MaxBodySize 限制请求体大小
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// SanitizeGuestStatus rewrites an empty or unknown rsvpStatus/status in a
// guest write body to "pending", at the top level and under "data".
// Bodies that are not JSON objects pass through unchanged.
func SanitizeGuestStatus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || (r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch) {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			utils.WriteBadRequestResponse(w, "Invalid request body")
			return
		}

		if sanitized, ok := sanitizeStatusFields(raw); ok {
			raw = sanitized
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		r.ContentLength = int64(len(raw))
		r.Header.Set("Content-Length", strconv.Itoa(len(raw)))
		next.ServeHTTP(w, r)
	})
}

func sanitizeStatusFields(raw []byte) ([]byte, bool) {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return nil, false
	}

	changed := coerceStatus(body)
	if data, ok := body["data"].(map[string]interface{}); ok {
		changed = coerceStatus(data) || changed
	}
	if !changed {
		return nil, false
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, false
	}
	return out, true
}

func coerceStatus(obj map[string]interface{}) bool {
	changed := false
	for _, key := range []string{"rsvpStatus", "status"} {
		v, present := obj[key]
		if !present {
			continue
		}
		s, _ := v.(string)
		normalized := string(models.NormalizeRSVPStatus(s))
		if v == nil || s != normalized {
			obj[key] = normalized
			changed = true
		}
	}
	return changed
}

// RateLimitByIP 按客户端 IP 限流（RemoteIP），超限返回 429 与 Retry-After
func RateLimitByIP(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := limiter.Allow(RemoteIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				utils.WriteTooManyRequestsResponse(w, "Trop de tentatives. Veuillez réessayer dans quelques minutes.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
