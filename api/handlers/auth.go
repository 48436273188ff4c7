package handlers

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🔐 管理员鉴权中间件
// =============================================================================

// adminRole 策略管理所需的角色声明
const adminRole = "admin"

// AdminClaims 管理端令牌声明
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator 基于 HMAC 签名 JWT 的管理端鉴权
type Authenticator struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthenticator 创建鉴权器
func NewAuthenticator(secret string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		logger: logger,
	}
}

// RequireAdmin 包装处理器，要求 Bearer 令牌携带 admin 角色。
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			WriteErrorMessage(w, http.StatusUnauthorized, types.ErrAuthentication, "missing bearer token", a.logger)
			return
		}

		claims := &AdminClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil || !parsed.Valid {
			a.logger.Warn("rejected admin token", zap.Error(err))
			WriteErrorMessage(w, http.StatusUnauthorized, types.ErrAuthentication, "invalid token", a.logger)
			return
		}
		if claims.Role != adminRole {
			WriteErrorMessage(w, http.StatusForbidden, types.ErrForbidden, "admin role required", a.logger)
			return
		}

		next(w, r)
	}
}

// bearerToken 从 Authorization 头提取 Bearer 令牌
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
