package handlers

import (
	"songlin/internal/middleware"
	"songlin/internal/models"

	"github.com/gin-gonic/gin"
)

// JSONError 统一的错误响应格式
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// CurrentUser 取出 LoadUser 放进上下文的用户，匿名访问返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// CurrentUserID 当前用户 ID，匿名访问返回 0
func CurrentUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
