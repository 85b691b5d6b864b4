package models

import (
	"time"
)

// Post 帖子。URL 和 Content 二选一：
// 有 URL 的是链接分享，有 Content 的是自述帖，创建时在 handler 层校验。
type Post struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Pid    string `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title  string `gorm:"not null" json:"title"`
	URL    string `json:"url"` // Optional
	// 原始 Markdown，输出时经 utils.RenderMarkdown 渲染并消毒
	Content string `gorm:"type:text" json:"content"`
	// 投票净值，可以为负；排序用的衰减分永远不落库，读取时现算
	Points       int       `gorm:"default:0" json:"points"`
	CommentCount int       `gorm:"default:0" json:"comment_count"` // 只增不减，评论创建时原子 +1
	CreatedAt    time.Time `json:"created_at"`
}
