package services

import (
	"songlin/internal/models"
)

// CommentNode 回复树节点：一条评论加按时间升序的子回复。
// 每次详情请求从当前的平铺评论集现场构建，不落库，构建完交给调用方后不再改动。
type CommentNode struct {
	models.Comment
	Children []*CommentNode `json:"children"`
}

// BuildCommentTree 把平铺的评论列表还原成回复树森林。
// 输入必须已按创建时间升序，这样按序 append 出来的兄弟节点
// 自然就是时间序，不需要再排。两遍扫描：
// 先建 id→节点索引，再把每个节点挂到父节点或根列表上，整体线性时间。
//
// ParentID 指向不存在的评论时按根节点处理。一个帖子的评论总是整批取出，
// 正常情况下悬空父节点不会出现，这只是兜底，不是支持的特性。
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &CommentNode{Comment: comments[i]}
	}

	roots := make([]*CommentNode, 0, len(comments))
	for i := range comments {
		node := nodes[comments[i].ID]
		if comments[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*comments[i].ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}
