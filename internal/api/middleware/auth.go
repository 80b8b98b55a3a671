package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/crew_server/internal/pkg/jwt"
	"github.com/qs3c/crew_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
)

// bearerToken 取出 Authorization 头中的令牌；ok 为 false 表示头存在但格式不对
func bearerToken(c *gin.Context) (token string, present, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, false
	}
	token = strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", true, false
	}
	return token, true, true
}

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}
		if !ok {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(token, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件，令牌无效时按未登录处理
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _, ok := bearerToken(c); ok {
			if claims, err := jwt.ParseToken(token, jwtSecret); err == nil {
				c.Set(UserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
