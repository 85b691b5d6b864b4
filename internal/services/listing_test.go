package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"songlin/internal/cache"
	"songlin/internal/models"
	"songlin/internal/ranking"
	"songlin/internal/store"
)

// fakeStore 内存版 PostStore，过滤/排序语义和 gorm 实现保持一致：
// 标题大小写不敏感、按字面做子串匹配（真实现里特殊字符已被转义）。
type fakeStore struct {
	mu       sync.Mutex
	posts    []models.Post
	comments map[uint][]models.Comment
	votes    map[string]int
	voteErr  map[uint]bool

	countCalls int
	listCalls  int
	voteCalls  int
}

func newFakeStore(posts []models.Post) *fakeStore {
	return &fakeStore{
		posts:    posts,
		comments: map[uint][]models.Comment{},
		votes:    map[string]int{},
		voteErr:  map[uint]bool{},
	}
}

func voteKey(userID, postID uint) string {
	return fmt.Sprintf("%d:%d", userID, postID)
}

func (f *fakeStore) filtered(q string) []models.Post {
	if q == "" {
		return f.posts
	}
	var out []models.Post
	for _, p := range f.posts {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(q)) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeStore) CountPosts(ctx context.Context, q string) (int64, error) {
	f.mu.Lock()
	f.countCalls++
	f.mu.Unlock()
	return int64(len(f.filtered(q))), nil
}

func (f *fakeStore) ListPosts(ctx context.Context, q string, order ranking.Order, offset, limit int) ([]models.Post, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()

	sorted := ranking.SortPosts(f.filtered(q), order, time.Now())
	if offset >= len(sorted) {
		return nil, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (f *fakeStore) GetPostByPid(ctx context.Context, pid string) (*models.Post, error) {
	for i := range f.posts {
		if f.posts[i].Pid == pid {
			return &f.posts[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return f.comments[postID], nil
}

func (f *fakeStore) GetPostVote(ctx context.Context, userID, postID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voteCalls++
	if f.voteErr[postID] {
		return 0, errors.New("lookup failed")
	}
	return f.votes[voteKey(userID, postID)], nil
}

func makeListingPosts(n int, now time.Time) []models.Post {
	posts := make([]models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = models.Post{
			ID:        uint(i + 1),
			Pid:       fmt.Sprintf("pid%d", i+1),
			Title:     fmt.Sprintf("Post number %d", i+1),
			Points:    i,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		}
	}
	return posts
}

func newListing(posts []models.Post) (*ListingService, *fakeStore) {
	fs := newFakeStore(posts)
	return NewListingService(fs, cache.New(100)), fs
}

func TestListPostsDefaults(t *testing.T) {
	svc, _ := newListing(makeListingPosts(3, time.Now()))

	// 零值/负值分页参数钳到默认
	page, err := svc.ListPosts(context.Background(), ListParams{Page: -1, PageSize: 0})
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}
	if page.Total != 3 || page.TotalPages != 1 {
		t.Errorf("Total = %d, TotalPages = %d", page.Total, page.TotalPages)
	}
	if len(page.Items) != 3 {
		t.Errorf("got %d items", len(page.Items))
	}
}

func TestListPostsPaginationScenario(t *testing.T) {
	// 30 条、每页 25：第一页 25 条，第二页 5 条
	svc, _ := newListing(makeListingPosts(30, time.Now()))
	ctx := context.Background()

	p1, err := svc.ListPosts(ctx, ListParams{Page: 1, PageSize: 25})
	if err != nil {
		t.Fatal(err)
	}
	if len(p1.Items) != 25 || p1.TotalPages != 2 || p1.Total != 30 {
		t.Errorf("page 1: items=%d totalPages=%d total=%d", len(p1.Items), p1.TotalPages, p1.Total)
	}

	p2, err := svc.ListPosts(ctx, ListParams{Page: 2, PageSize: 25})
	if err != nil {
		t.Fatal(err)
	}
	if len(p2.Items) != 5 {
		t.Errorf("page 2: items=%d, want 5", len(p2.Items))
	}

	// 超出最后一页不报错，返回空列表但元数据照旧
	p3, err := svc.ListPosts(ctx, ListParams{Page: 3, PageSize: 25})
	if err != nil {
		t.Fatal(err)
	}
	if len(p3.Items) != 0 || p3.Total != 30 || p3.TotalPages != 2 {
		t.Errorf("page 3: items=%d total=%d totalPages=%d", len(p3.Items), p3.Total, p3.TotalPages)
	}
}

func TestListPostsPagesPartitionSet(t *testing.T) {
	// 翻完所有页，每个 ID 恰好出现一次
	svc, _ := newListing(makeListingPosts(23, time.Now()))
	ctx := context.Background()

	seen := map[uint]int{}
	for p := 1; p <= 4; p++ {
		page, err := svc.ListPosts(ctx, ListParams{Page: p, PageSize: 7, Sort: "top"})
		if err != nil {
			t.Fatal(err)
		}
		for _, item := range page.Items {
			seen[item.ID]++
		}
	}
	if len(seen) != 23 {
		t.Fatalf("union of pages has %d ids, want 23", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %d appears %d times", id, n)
		}
	}
}

func TestListPostsSearch(t *testing.T) {
	now := time.Now()
	posts := []models.Post{
		{ID: 1, Title: "Go concurrency patterns", CreatedAt: now},
		{ID: 2, Title: "Rust ownership", CreatedAt: now.Add(-time.Hour)},
		{ID: 3, Title: "Why GO is fun", CreatedAt: now.Add(-2 * time.Hour)},
	}
	svc, _ := newListing(posts)
	ctx := context.Background()

	// 大小写不敏感，搜索词前后空白被裁掉
	page, err := svc.ListPosts(ctx, ListParams{Query: "  go "})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Fatalf("Total = %d, want 2", page.Total)
	}
	for _, item := range page.Items {
		if !strings.Contains(strings.ToLower(item.Title), "go") {
			t.Errorf("item %q does not match query", item.Title)
		}
	}

	// 纯空白搜索词等于不过滤
	page, err = svc.ListPosts(ctx, ListParams{Query: "   "})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 {
		t.Errorf("whitespace query filtered: Total = %d, want 3", page.Total)
	}
}

// % 和 _ 是按字面匹配的普通字符，不是通配符
func TestListPostsSearchLiteralWildcards(t *testing.T) {
	now := time.Now()
	posts := []models.Post{
		{ID: 1, Title: "50% off everything", CreatedAt: now},
		{ID: 2, Title: "500 offers", CreatedAt: now.Add(-time.Hour)},
		{ID: 3, Title: "snake_case naming", CreatedAt: now.Add(-2 * time.Hour)},
	}
	svc, _ := newListing(posts)
	ctx := context.Background()

	page, err := svc.ListPosts(ctx, ListParams{Query: "50%"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].ID != 1 {
		t.Fatalf(`Query "50%%": Total = %d, want 只命中 ID 1`, page.Total)
	}

	page, err = svc.ListPosts(ctx, ListParams{Query: "_"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].ID != 3 {
		t.Fatalf(`Query "_": Total = %d, want 只命中 ID 3`, page.Total)
	}
}

func TestListPostsCacheHitAndInvalidation(t *testing.T) {
	svc, fs := newListing(makeListingPosts(5, time.Now()))
	ctx := context.Background()
	params := ListParams{Page: 1, PageSize: 25}

	if _, err := svc.ListPosts(ctx, params); err != nil {
		t.Fatal(err)
	}
	if fs.countCalls != 1 {
		t.Fatalf("first call: countCalls = %d, want 1", fs.countCalls)
	}

	// 第二次命中缓存，不再查库
	if _, err := svc.ListPosts(ctx, params); err != nil {
		t.Fatal(err)
	}
	if fs.countCalls != 1 {
		t.Errorf("cached call hit the store: countCalls = %d", fs.countCalls)
	}

	// 发帖后缓存失效，再查会重新落库，新帖必须出现在结果里
	newPost := models.Post{ID: 99, Pid: "pid99", Title: "Fresh post", CreatedAt: time.Now().Add(time.Minute)}
	fs.posts = append(fs.posts, newPost)
	svc.OnPostCreated(&newPost)

	page, err := svc.ListPosts(ctx, params)
	if err != nil {
		t.Fatal(err)
	}
	if fs.countCalls != 2 {
		t.Errorf("post-create call should miss cache: countCalls = %d", fs.countCalls)
	}
	if page.Total != 6 {
		t.Errorf("stale page returned after create: Total = %d, want 6", page.Total)
	}
	found := false
	for _, item := range page.Items {
		if item.ID == 99 {
			found = true
		}
	}
	if !found {
		t.Error("new post missing from re-listed page")
	}
}

func TestListPostsVoteAnnotation(t *testing.T) {
	svc, fs := newListing(makeListingPosts(3, time.Now()))
	ctx := context.Background()

	fs.votes[voteKey(7, 1)] = 1
	fs.votes[voteKey(7, 2)] = -1
	fs.voteErr[3] = true // 这条查失败，该项降级为未投票

	page, err := svc.ListPosts(ctx, ListParams{UserID: 7})
	if err != nil {
		t.Fatal(err)
	}
	got := map[uint]int{}
	for _, item := range page.Items {
		got[item.ID] = item.UserVote
	}
	if got[1] != 1 || got[2] != -1 || got[3] != 0 {
		t.Errorf("votes = %v, want {1:1 2:-1 3:0}", got)
	}

	// 匿名访问完全不查投票
	before := fs.voteCalls
	if _, err := svc.ListPosts(ctx, ListParams{}); err != nil {
		t.Fatal(err)
	}
	if fs.voteCalls != before {
		t.Error("anonymous listing looked up votes")
	}
}

func TestListPostsCacheKeyedByViewer(t *testing.T) {
	svc, fs := newListing(makeListingPosts(2, time.Now()))
	ctx := context.Background()

	fs.votes[voteKey(1, 1)] = 1

	pageA, err := svc.ListPosts(ctx, ListParams{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	// 用户 2 不能吃到用户 1 的缓存，否则会看到别人的投票状态
	pageB, err := svc.ListPosts(ctx, ListParams{UserID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if pageA.Items[0].UserVote != 1 {
		t.Errorf("user 1 vote = %d, want 1", pageA.Items[0].UserVote)
	}
	if pageB.Items[0].UserVote != 0 {
		t.Errorf("user 2 leaked user 1's vote: %d", pageB.Items[0].UserVote)
	}
}

func TestListPostsBestOrder(t *testing.T) {
	now := time.Now()
	posts := []models.Post{
		{ID: 1, Pid: "a", Title: "old but popular", Points: 50, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: 2, Pid: "b", Title: "new and rising", Points: 10, CreatedAt: now.Add(-1 * time.Hour)},
	}
	svc, _ := newListing(posts)

	page, err := svc.ListPosts(context.Background(), ListParams{Sort: "best"})
	if err != nil {
		t.Fatal(err)
	}

	s1 := ranking.ScoreAt(50, posts[0].CreatedAt, now)
	s2 := ranking.ScoreAt(10, posts[1].CreatedAt, now)
	wantFirst := uint(1)
	if s2 > s1 {
		wantFirst = 2
	}
	if page.Items[0].ID != wantFirst {
		t.Errorf("best order: first = %d, want %d (scores %v vs %v)", page.Items[0].ID, wantFirst, s1, s2)
	}
}

func TestGetPostDetail(t *testing.T) {
	now := time.Now()
	posts := makeListingPosts(1, now)
	svc, fs := newListing(posts)
	ctx := context.Background()

	fs.comments[1] = []models.Comment{
		{ID: 1, PostID: 1, Content: "top", CreatedAt: now},
		{ID: 2, PostID: 1, ParentID: uintp(1), Content: "reply", CreatedAt: now.Add(time.Minute)},
	}
	fs.votes[voteKey(5, 1)] = 1

	detail, err := svc.GetPostDetail(ctx, "pid1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Post.UserVote != 1 {
		t.Errorf("UserVote = %d, want 1", detail.Post.UserVote)
	}
	if len(detail.Tree) != 1 || len(detail.Tree[0].Children) != 1 {
		t.Errorf("tree shape wrong: %+v", detail.Tree)
	}

	if _, err := svc.GetPostDetail(ctx, "no-such-pid", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing post: err = %v, want ErrNotFound", err)
	}
}
