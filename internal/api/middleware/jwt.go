package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/JocelynSullivan/VibeCycle/internal/model"

	"github.com/gin-gonic/gin"
)

// TokenValidator 校验令牌并返回其 subject。
type TokenValidator interface {
	Validate(token string) (string, error)
}

// UserFinder 按用户名解析用户，查不到返回 (nil, nil)。
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

const userKey = "currentUser"

// AuthMiddleware 校验 Bearer 令牌并把已认证用户写入上下文。
//
// 令牌无效、subject 对应的用户已不存在，一律 401 并带
// WWW-Authenticate: Bearer 响应头；所有受保护端点共用这一条失败路径。
func AuthMiddleware(tokens TokenValidator, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		subject, err := tokens.Validate(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := users.FindByUsername(c.Request.Context(), subject)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
			c.Abort()
			return
		}
		if user == nil {
			abortUnauthorized(c)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
	c.Abort()
}

// CurrentUser 取出认证中间件写入的用户。不存在时返回 nil。
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}
