package utils

import (
	"math/rand"
)

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const (
	letterIdxBits = 6                    // 63 个字符用 6 bit 表示
	letterIdxMask = 1<<letterIdxBits - 1 // 低 6 bit 全 1 的掩码
	letterIdxMax  = 63 / letterIdxBits   // 一个 Int63 能切出几段
)

// RandStringBytesMaskImpr 生成指定长度的随机短 ID（帖子 Pid / 评论 Cid）
func RandStringBytesMaskImpr(n int) string {
	b := make([]byte, n)
	// 一次 Int63 切成多段 6 bit 来用，比每个字符调一次快
	for i, cache, remain := n-1, rand.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = rand.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}
	return string(b)
}
