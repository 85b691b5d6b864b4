package ranking

import (
	"sort"
	"time"

	"songlin/internal/models"
)

// Order 列表排序策略
type Order int

const (
	OrderNew  Order = iota // 最新发布，默认
	OrderTop               // 净投票数
	OrderBest              // 衰减热度分
)

// ParseOrder 解析排序关键字，未知值回落到 new
func ParseOrder(s string) Order {
	switch s {
	case "top":
		return OrderTop
	case "best":
		return OrderBest
	default:
		return OrderNew
	}
}

func (o Order) String() string {
	switch o {
	case OrderTop:
		return "top"
	case OrderBest:
		return "best"
	default:
		return "new"
	}
}

// Clause 返回该策略对应的 SQL ORDER BY 子句。
// best 的衰减分直接在数据库里算：全量拉到内存排序后再分页的话，
// 内存和延迟都会跟着表的大小一起涨。NOW() 在单条查询内是常量，
// 正好满足“同一次排序用同一个 now”。GREATEST 把时钟偏移导致的负年龄钳到 0。
func (o Order) Clause() string {
	switch o {
	case OrderTop:
		return "points DESC, created_at DESC"
	case OrderBest:
		return "points / POWER(GREATEST(EXTRACT(EPOCH FROM (NOW() - created_at)) / 3600.0, 0) + 2, 1.8) DESC, created_at DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// SortPosts 按策略返回排好序的新切片，不改动输入。
// 走数据库的列表用 Clause 下推排序，这里服务于内存中的小集合和测试。
func SortPosts(posts []models.Post, o Order, now time.Time) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)

	switch o {
	case OrderTop:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Points != out[j].Points {
				return out[i].Points > out[j].Points
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case OrderBest:
		sort.SliceStable(out, func(i, j int) bool {
			si := ScoreAt(out[i].Points, out[i].CreatedAt, now)
			sj := ScoreAt(out[j].Points, out[j].CreatedAt, now)
			if si != sj {
				return si > sj
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}
