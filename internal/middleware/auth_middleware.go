package middleware

import (
	"net/http"
	"strings"

	"Orion_Tube/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	usernameKey = "username"
)

// TokenValidator 解析并校验登录令牌
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// 流程：1、从http请求中取出"Authorization"字段 2、验证"Bearer [token]" 3、校验token有效性 4、若成功，把用户信息放入context
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 拿到http协议请求头中的Authorization字段
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 立刻调用c.Abort()，阻止后续的任何处理器（包括其他中间件和最终的handler）被执行
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权令牌"})
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "授权令牌格式不正确"})
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的授权令牌"})
			return
		}

		// Token验证成功！将用户信息存入Context，以便后续使用
		c.Set(userIDKey, claims.UserID)
		c.Set(usernameKey, claims.Username)

		// 放行，继续处理请求
		c.Next()
	}
}

// OptionalAuthMiddleware 公开接口用：带了有效令牌就记下用户，没带或无效都按游客放行
func OptionalAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := tokens.ValidateToken(tokenString); err == nil {
				c.Set(userIDKey, claims.UserID)
				c.Set(usernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

// 通常Token的格式是 "Bearer [token]"
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// CurrentUserID 取出认证后的用户ID
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok && id != 0
}
