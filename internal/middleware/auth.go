package middleware

import (
	"net/http"
	"songlin/internal/db"
	"songlin/internal/models"
	"songlin/internal/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// bearerToken 从 Authorization 头里取出 Bearer 令牌
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// LoadUser 尝试解析令牌并把用户放进上下文，没带令牌或令牌无效就当匿名访问。
// 身份在这里验证一次，后面的 service 层直接信任。
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if userID, err := utils.ParseToken(token); err == nil {
				var user models.User
				if result := db.DB.First(&user, userID); result.Error == nil {
					c.Set(CheckUserKey, &user)
				}
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "需要登录"})
			return
		}
		c.Next()
	}
}
