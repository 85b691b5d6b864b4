package handlers

import (
	"net/http"
	"songlin/internal/db"
	"songlin/internal/middleware"
	"songlin/internal/models"
	"songlin/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

type voteRequest struct {
	Value int `json:"value"` // 1 或 -1
}

// Vote 对帖子或评论投票。每人每个目标只有一票，重复投票不生效，
// 返回当前净值。票和计数在一个事务里落库，计数用原子自增。
func (h *VoteHandler) Vote(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	itemType := c.Param("type") // "post" or "comment"
	id := uint(utils.StringToInt(c.Param("id")))

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Value != 1 && req.Value != -1) {
		JSONError(c, http.StatusBadRequest, "投票值只能是 1 或 -1")
		return
	}

	if itemType != "post" && itemType != "comment" {
		JSONError(c, http.StatusBadRequest, "不支持的投票对象")
		return
	}

	// 目标必须存在
	if itemType == "post" {
		var post models.Post
		if err := db.DB.First(&post, id).Error; err != nil {
			JSONError(c, http.StatusNotFound, "文章不存在")
			return
		}
	} else {
		var comment models.Comment
		if err := db.DB.First(&comment, id).Error; err != nil {
			JSONError(c, http.StatusNotFound, "评论不存在")
			return
		}
	}

	tx := db.DB.Begin()

	query := tx.Where("user_id = ?", user.ID)
	if itemType == "post" {
		query = query.Where("post_id = ?", id)
	} else {
		query = query.Where("comment_id = ?", id)
	}

	// Check if already voted
	var existingVote models.Vote
	if err := query.First(&existingVote).Error; err == nil {
		// 已投过，不重复计票，返回当前净值
		tx.Rollback()
		c.JSON(http.StatusOK, gin.H{"points": h.currentPoints(itemType, id)})
		return
	}

	newVote := models.Vote{
		UserID: user.ID,
		Value:  req.Value,
	}
	if itemType == "post" {
		newVote.PostID = &id
	} else {
		newVote.CommentID = &id
	}

	if err := tx.Create(&newVote).Error; err != nil {
		tx.Rollback()
		JSONError(c, http.StatusInternalServerError, "投票失败")
		return
	}

	// 净值原子更新，Points 可以为负
	var err error
	if itemType == "post" {
		err = tx.Model(&models.Post{}).Where("id = ?", id).
			UpdateColumn("points", gorm.Expr("points + ?", req.Value)).Error
	} else {
		err = tx.Model(&models.Comment{}).Where("id = ?", id).
			UpdateColumn("points", gorm.Expr("points + ?", req.Value)).Error
	}
	if err != nil {
		tx.Rollback()
		JSONError(c, http.StatusInternalServerError, "投票失败")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"points": h.currentPoints(itemType, id)})
}

// currentPoints 读目标当前的净投票数
func (h *VoteHandler) currentPoints(itemType string, id uint) int {
	if itemType == "post" {
		var post models.Post
		if err := db.DB.Select("points").First(&post, id).Error; err == nil {
			return post.Points
		}
		return 0
	}
	var comment models.Comment
	if err := db.DB.Select("points").First(&comment, id).Error; err == nil {
		return comment.Points
	}
	return 0
}
