package models

import (
	"time"
)

// Vote 一票。PostID 和 CommentID 二选一，关联声明保证
// 帖子或评论被硬删除时投票行跟着级联删掉，不留孤儿。
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    *uint     `gorm:"index" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CommentID *uint     `gorm:"index" json:"comment_id"`
	Comment   *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}

// One vote per item per user is enforced by the handler's
// existing-vote check inside a transaction. PG partial unique
// indexes would also work but are awkward with nullable columns in GORM tags.
