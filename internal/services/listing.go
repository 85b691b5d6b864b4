package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"

	"songlin/internal/cache"
	"songlin/internal/models"
	"songlin/internal/ranking"
	"songlin/internal/store"
)

// ErrNotFound 目标帖子不存在
var ErrNotFound = errors.New("post not found")

const (
	// 列表缓存的命名空间前缀，发帖后整个前缀一起失效
	listCachePrefix = "post:list:"
	// 匿名访客在缓存 key 里的占位标识
	anonViewer = "anon"

	DefaultPageSize = 25
)

// PostStore 列表和详情需要的存储能力，store.Store 是生产实现，测试用内存假实现
type PostStore interface {
	CountPosts(ctx context.Context, q string) (int64, error)
	ListPosts(ctx context.Context, q string, order ranking.Order, offset, limit int) ([]models.Post, error)
	GetPostByPid(ctx context.Context, pid string) (*models.Post, error)
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	GetPostVote(ctx context.Context, userID, postID uint) (int, error)
}

// ListingService 帖子列表的编排：过滤、排序、分页、投票标注、缓存
type ListingService struct {
	store PostStore
	cache *cache.Cache
}

func NewListingService(st PostStore, c *cache.Cache) *ListingService {
	return &ListingService{store: st, cache: c}
}

// ListParams 列表请求参数，零值都有默认行为
type ListParams struct {
	Page     int
	PageSize int
	Sort     string
	Query    string
	UserID   uint // 0 表示匿名
}

// PostItem 列表/详情里的单个帖子，带上当前用户的投票方向
type PostItem struct {
	models.Post
	UserVote int `json:"user_vote"` // -1, 0, 1
}

// PostPage 一页帖子加分页元数据
type PostPage struct {
	Items      []PostItem `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// PostDetail 帖子详情：帖子本身加完整回复树
type PostDetail struct {
	Post PostItem
	Tree []*CommentNode
}

// listCacheKey 由规范化后的请求参数推导缓存 key。
// 参数完全相同的两次请求必须得到同一个 key，任何一项不同 key 就不同；
// 投票标注跟着用户走，所以用户身份也是 key 的一部分，
// 不然 A 的投票状态会从缓存里漏给 B。
func listCacheKey(page, pageSize int, order ranking.Order, q string, userID uint) string {
	viewer := anonViewer
	if userID != 0 {
		viewer = fmt.Sprintf("%d", userID)
	}
	if q == "" {
		q = "-"
	}
	return fmt.Sprintf("%spage:%d:size:%d:sort:%s:q:%s:user:%s",
		listCachePrefix, page, pageSize, order, url.QueryEscape(q), viewer)
}

// ListPosts 返回一页帖子。先查缓存，命中原样返回；
// 未命中就查库、标注投票、写缓存。非法分页参数钳到默认值，不报错。
func (s *ListingService) ListPosts(ctx context.Context, p ListParams) (*PostPage, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	order := ranking.ParseOrder(p.Sort)
	q := strings.TrimSpace(p.Query)

	key := listCacheKey(p.Page, p.PageSize, order, q, p.UserID)
	if cached, ok := s.cache.Get(key); ok {
		if page, ok := cached.(*PostPage); ok {
			return page, nil
		}
	}

	total, err := s.store.CountPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(p.PageSize)))

	offset := (p.Page - 1) * p.PageSize
	posts, err := s.store.ListPosts(ctx, q, order, offset, p.PageSize)
	if err != nil {
		return nil, err
	}

	page := &PostPage{
		Items:      s.annotateVotes(ctx, posts, p.UserID),
		Total:      total,
		Page:       p.Page,
		TotalPages: totalPages,
	}

	s.cache.Set(key, page, cache.DefaultTTL)
	return page, nil
}

// annotateVotes 并发查出当前用户对本页每个帖子的投票。
// 页面组装耗时取决于最慢的一次查询而不是所有查询之和；
// 单条查询失败只降级那一条（按没投票算），不影响整页。
func (s *ListingService) annotateVotes(ctx context.Context, posts []models.Post, userID uint) []PostItem {
	items := make([]PostItem, len(posts))
	for i, post := range posts {
		items[i] = PostItem{Post: post}
	}
	if userID == 0 {
		return items
	}

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err := s.store.GetPostVote(ctx, userID, items[i].ID)
			if err != nil {
				return // 降级为未投票
			}
			items[i].UserVote = value
		}(i)
	}
	wg.Wait()
	return items
}

// GetPostDetail 帖子详情：帖子、回复树、当前用户的投票。
// 详情不走缓存，评论数变化频繁而单次查询足够便宜。
func (s *ListingService) GetPostDetail(ctx context.Context, pid string, userID uint) (*PostDetail, error) {
	post, err := s.store.GetPostByPid(ctx, pid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	item := PostItem{Post: *post}
	if userID != 0 {
		if value, err := s.store.GetPostVote(ctx, userID, post.ID); err == nil {
			item.UserVote = value
		}
	}

	return &PostDetail{
		Post: item,
		Tree: BuildCommentTree(comments),
	}, nil
}

// OnPostCreated 发帖成功后的缓存钩子。
// 新帖可能改变任何排序、任何搜索词、任何用户视角下的第一页，
// 所以整个列表命名空间无条件一起失效，正确性优先于命中率。
func (s *ListingService) OnPostCreated(post *models.Post) {
	s.cache.InvalidatePrefix(listCachePrefix)
}

// OnPostDeleted 删帖后的缓存钩子，和发帖一样整个前缀失效
func (s *ListingService) OnPostDeleted(post *models.Post) {
	s.cache.InvalidatePrefix(listCachePrefix)
}
