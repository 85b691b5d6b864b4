package cache

import (
	"log"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTTL 查询缓存的默认有效期
const DefaultTTL = 5 * time.Minute

// Item 包装缓存数据和过期时间
type Item struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Stats 当前缓存的快照，测试和调试接口用
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Cache 进程内查询缓存，按 key 前缀批量失效。
// 每个进程一个实例，由 main 创建后注入各服务，测试里可以换成空实现。
// mu 罩住整个 LRU：InvalidatePrefix 要在一步内清掉整个命名空间，
// 并发读要么看到失效前的全量，要么看到失效后的空，不能看到一半。
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, Item]
}

// New 创建指定容量的缓存
func New(size int) *Cache {
	l, err := lru.New[string, Item](size)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
	return &Cache{lru: l}
}

// Set 写入缓存，TTL 为过期时间
func (c *Cache) Set(key string, data interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, Item{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get 读取缓存，不存在或已过期返回 miss。
// 过期条目在这里顺手删掉，没有后台清理协程。
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(val.ExpiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return val.Data, true
}

// InvalidatePrefix 一次性删掉所有以 prefix 开头的条目
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

// Clear 清空缓存
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Stats 返回条目数和 key 列表，已过期但还没被惰性清理的条目不算在内
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, c.lru.Len())
	for _, key := range c.lru.Keys() {
		if val, ok := c.lru.Peek(key); ok && now.Before(val.ExpiresAt) {
			keys = append(keys, key)
		}
	}
	return Stats{Size: len(keys), Keys: keys}
}
