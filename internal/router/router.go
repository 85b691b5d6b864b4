package router

import (
	"songlin/internal/handlers"
	"songlin/internal/middleware"
	"songlin/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, listing *services.ListingService) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler(listing)
	commentHandler := handlers.NewCommentHandler()
	voteHandler := handlers.NewVoteHandler()

	api := r.Group("/api")
	api.Use(middleware.LoadUser())

	// 公共路由 (Public Routes)
	api.POST("/signup", authHandler.Signup)    // 注册
	api.POST("/login", authHandler.Login)      // 登录，签发令牌
	api.GET("/posts", postHandler.List)        // 帖子列表（分页/排序/搜索）
	api.GET("/posts/:pid", postHandler.Detail) // 帖子详情，带回复树

	// 受保护路由 (Protected Routes)
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)                          // 当前用户
		authorized.POST("/posts", postHandler.Create)                  // 发布帖子
		authorized.DELETE("/posts/:pid", postHandler.Delete)           // 删除帖子
		authorized.POST("/posts/:pid/comments", commentHandler.Create) // 发表评论
		authorized.PUT("/comments/:cid", commentHandler.Update)        // 编辑评论
		authorized.DELETE("/comments/:cid", commentHandler.Delete)     // 删除评论（软删除）
		authorized.POST("/vote/:type/:id", voteHandler.Vote)           // 投票
	}
}
