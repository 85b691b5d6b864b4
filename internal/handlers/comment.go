package handlers

import (
	"net/http"
	"songlin/internal/db"
	"songlin/internal/middleware"
	"songlin/internal/models"
	"songlin/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// Create 发表评论。parent_id 可选，填了就是回复。
// 成功后帖子的 comment_count 原子 +1，这个计数只增不减。
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "文章不存在")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		JSONError(c, http.StatusBadRequest, "评论内容不能为空")
		return
	}

	// 指定了父评论时校验它存在且属于同一个帖子
	var parentID *uint
	if req.ParentID != nil {
		var parent models.Comment
		if err := db.DB.First(&parent, *req.ParentID).Error; err != nil || parent.PostID != post.ID {
			JSONError(c, http.StatusBadRequest, "被回复的评论不存在")
			return
		}
		parentID = req.ParentID
	}

	comment := models.Comment{
		Cid:      utils.RandStringBytesMaskImpr(8),
		PostID:   post.ID,
		UserID:   user.ID,
		Content:  req.Content,
		ParentID: parentID,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "评论失败")
		return
	}

	db.DB.Model(&post).UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))

	comment.User = *user
	c.JSON(http.StatusCreated, gin.H{"comment": comment, "content": comment.Content})
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// Update 编辑评论，只允许作者本人，已删除的评论不能再编辑
func (h *CommentHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	cid := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Where("cid = ?", cid).First(&comment).Error; err != nil {
		JSONError(c, http.StatusNotFound, "评论不存在")
		return
	}
	if comment.UserID != user.ID {
		JSONError(c, http.StatusForbidden, "无权编辑此评论")
		return
	}
	if comment.Deleted {
		JSONError(c, http.StatusBadRequest, "已删除的评论不能编辑")
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		JSONError(c, http.StatusBadRequest, "评论内容不能为空")
		return
	}

	now := time.Now()
	comment.Content = req.Content
	comment.EditedAt = &now
	// 编辑不动 comment_count
	if err := db.DB.Save(&comment).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment, "content": comment.Content})
}

// Delete 软删除评论：只打标记。ID 和父子关系保留，
// 子回复照常挂在下面，展示时正文换成占位文案。
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	cid := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Where("cid = ?", cid).First(&comment).Error; err != nil {
		JSONError(c, http.StatusNotFound, "评论不存在")
		return
	}
	if comment.UserID != user.ID {
		JSONError(c, http.StatusForbidden, "无权删除此评论")
		return
	}

	if err := db.DB.Model(&comment).UpdateColumn("deleted", true).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "删除失败")
		return
	}

	c.Status(http.StatusNoContent)
}
