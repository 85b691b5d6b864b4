package store

import (
	"context"
	"errors"
	"strings"

	"songlin/internal/models"
	"songlin/internal/ranking"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Store 数据库访问层，所有列表/详情查询都从这里走
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// escapeLike 转义 ILIKE 模式里的特殊字符，用户输入一律按字面匹配
var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// titlePattern 把搜索词变成大小写不敏感的子串匹配模式
func titlePattern(q string) string {
	return "%" + escapeLike.Replace(q) + "%"
}

// postQuery 构造列表的过滤条件。过滤只有两种形态：标题子串匹配、无过滤，
// q 为空串表示无过滤。计数和翻页共用这一个入口，保证两边是同一个集合。
func (s *Store) postQuery(ctx context.Context, q string) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Post{})
	if q != "" {
		tx = tx.Where("title ILIKE ?", titlePattern(q))
	}
	return tx
}

// CountPosts 统计过滤后的帖子总数
func (s *Store) CountPosts(ctx context.Context, q string) (int64, error) {
	var total int64
	if err := s.postQuery(ctx, q).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListPosts 取过滤 + 排序后的一页帖子。
// 排序子句由 ranking.Order 下推到数据库，best 的衰减分在 SQL 里现算。
func (s *Store) ListPosts(ctx context.Context, q string, order ranking.Order, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.postQuery(ctx, q).
		Preload("User").
		Order(order.Clause()).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostByPid 按短 ID 查单个帖子
func (s *Store) GetPostByPid(ctx context.Context, pid string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("User").Where("pid = ?", pid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListComments 取一个帖子的全部评论，按创建时间升序。
// 升序是构树的前提：按序 append 之后兄弟节点天然按时间排好。
func (s *Store) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// GetPostVote 查某个用户对某个帖子投过的票，没投过返回 0
func (s *Store) GetPostVote(ctx context.Context, userID, postID uint) (int, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return vote.Value, nil
}
