package models

import (
	"time"
)

type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Cid      string `gorm:"uniqueIndex;size:8;not null" json:"cid"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Post     Post   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID *uint  `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Content  string `gorm:"type:text;not null" json:"-"`
	Points   int    `gorm:"default:0" json:"points"`
	// 软删除：只打标记，ID 和 ParentID 保留，子回复不受影响。
	// 展示时由 DisplayContent 替换为占位文案，结构逻辑不关心这个标记。
	Deleted   bool       `gorm:"default:false" json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at"`
}

// DeletedBody 已删除评论的占位文案
const DeletedBody = "该评论已删除。"

// DisplayContent 返回用于展示的正文，已删除的评论返回占位文案
func (c *Comment) DisplayContent() string {
	if c.Deleted {
		return DeletedBody
	}
	return c.Content
}
