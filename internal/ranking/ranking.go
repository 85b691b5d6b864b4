package ranking

import (
	"math"
	"time"
)

// Hacker News 式的热度衰减公式: P / (T+2)^G
// P = 帖子净投票数, T = 发布至今的小时数, G = 重力系数
const (
	Gravity = 1.8
	// 分母偏移，保证刚发布 (T≈0) 的帖子不会除出天文数字
	Offset = 2.0
)

// Score 计算单个帖子的衰减热度分。
// ageHours 允许为负（时钟偏移时可能出现），负值按 0 处理。
// 票数越高分越高，年龄越大分越低，对所有输入都有定义。
func Score(points int, ageHours float64) float64 {
	if ageHours < 0 {
		ageHours = 0
	}
	return float64(points) / math.Pow(ageHours+Offset, Gravity)
}

// ScoreAt 以统一的 now 计算热度分。
// 同一次排序内必须用同一个 now，否则排序中途分数会漂移。
func ScoreAt(points int, createdAt, now time.Time) float64 {
	return Score(points, now.Sub(createdAt).Hours())
}
