package handlers

import (
	"net/http"
	"songlin/internal/db"
	"songlin/internal/middleware"
	"songlin/internal/models"
	"songlin/internal/services"
	"songlin/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	listing *services.ListingService
}

func NewPostHandler(listing *services.ListingService) *PostHandler {
	return &PostHandler{listing: listing}
}

// List 帖子列表。
// 参数: page, page_size, sort (new/top/best), q (标题搜索)。
// 非法分页参数在 service 层钳到默认值，这个接口正常情况下不报错。
func (h *PostHandler) List(c *gin.Context) {
	page, err := h.listing.ListPosts(c.Request.Context(), services.ListParams{
		Page:     utils.StringToInt(c.Query("page")),
		PageSize: utils.StringToInt(c.Query("page_size")),
		Sort:     c.Query("sort"),
		Query:    c.Query("q"),
		UserID:   CurrentUserID(c),
	})
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "查询失败")
		return
	}
	c.JSON(http.StatusOK, page)
}

// commentJSON 详情响应里的评论节点，正文在这里才做删除占位替换和 Markdown 渲染
type commentJSON struct {
	ID          uint          `json:"id"`
	Cid         string        `json:"cid"`
	ParentID    *uint         `json:"parent_id"`
	User        models.User   `json:"user"`
	Content     string        `json:"content"`
	ContentHTML string        `json:"content_html"`
	Points      int           `json:"points"`
	Deleted     bool          `json:"deleted"`
	CreatedAt   string        `json:"created_at"`
	EditedAt    *string       `json:"edited_at"`
	Children    []commentJSON `json:"children"`
}

func renderCommentTree(nodes []*services.CommentNode) []commentJSON {
	out := make([]commentJSON, 0, len(nodes))
	for _, node := range nodes {
		body := node.DisplayContent()
		item := commentJSON{
			ID:          node.ID,
			Cid:         node.Cid,
			ParentID:    node.ParentID,
			User:        node.User,
			Content:     body,
			ContentHTML: utils.RenderMarkdown(body),
			Points:      node.Points,
			Deleted:     node.Deleted,
			CreatedAt:   node.CreatedAt.Format(time.RFC3339),
			Children:    renderCommentTree(node.Children),
		}
		if node.EditedAt != nil {
			edited := node.EditedAt.Format(time.RFC3339)
			item.EditedAt = &edited
		}
		out = append(out, item)
	}
	return out
}

// Detail 帖子详情，带完整回复树。不走缓存，每次现读。
func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	detail, err := h.listing.GetPostDetail(c.Request.Context(), pid, CurrentUserID(c))
	if err == services.ErrNotFound {
		JSONError(c, http.StatusNotFound, "文章不存在")
		return
	}
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "查询失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":         detail.Post,
		"content_html": utils.RenderMarkdown(detail.Post.Content),
		"comments":     renderCommentTree(detail.Tree),
	})
}

type createPostRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Create 发布帖子。URL 和正文二选一，发布成功后列表缓存整体失效。
func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "请求格式不正确")
		return
	}

	title := utils.SanitizeText(req.Title)
	if title == "" {
		JSONError(c, http.StatusBadRequest, "标题不能为空")
		return
	}
	// 链接帖和自述帖二选一
	if (req.URL == "") == (req.Content == "") {
		JSONError(c, http.StatusBadRequest, "链接和正文必须且只能填一个")
		return
	}

	post := models.Post{
		Pid:     utils.RandStringBytesMaskImpr(8),
		UserID:  user.ID,
		Title:   title,
		URL:     req.URL,
		Content: req.Content, // 存原始 Markdown，输出时渲染
		Points:  1,           // Self vote
	}
	if err := db.DB.Create(&post).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "发布失败")
		return
	}

	// 新帖会改变所有排序、所有搜索、所有用户视角的列表，缓存整个前缀失效
	h.listing.OnPostCreated(&post)

	post.User = *user
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// Delete 删除帖子，只允许作者本人
func (h *PostHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "文章不存在")
		return
	}
	if post.UserID != user.ID {
		JSONError(c, http.StatusForbidden, "无权删除此文章")
		return
	}

	// Hard Delete，评论和投票靠外键级联
	db.DB.Unscoped().Delete(&post)

	// 列表里少了一条，缓存同样整体失效
	h.listing.OnPostDeleted(&post)

	c.Status(http.StatusNoContent)
}
