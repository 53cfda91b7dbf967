package middleware

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context) bool
}

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	capacity   int64      // 桶容量
	tokens     int64      // 当前令牌数
	refillRate int64      // 每秒补充的令牌数
	lastRefill time.Time  // 上次补充时间
	mu         sync.Mutex // 锁
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow(ctx context.Context) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	// 补充令牌
	tokensToAdd := int64(elapsed * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens = min(tb.tokens+tokensToAdd, tb.capacity)
		tb.lastRefill = now
	}

	// 检查是否有足够的令牌
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// KeyedTokenBucket 按 key（通常是客户端 IP）分桶的限流器。
// 空闲超过 idleTTL 的桶在下次访问时顺带清理，避免 map 无界增长。
type KeyedTokenBucket struct {
	capacity   int64
	refillRate int64
	idleTTL    time.Duration

	mu       sync.Mutex
	buckets  map[string]*keyedEntry
	lastScan time.Time
}

type keyedEntry struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewKeyedTokenBucket 创建按 key 分桶的限流器
func NewKeyedTokenBucket(capacity, refillRate int64, idleTTL time.Duration) *KeyedTokenBucket {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedTokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		idleTTL:    idleTTL,
		buckets:    make(map[string]*keyedEntry),
		lastScan:   time.Now(),
	}
}

// AllowKey 检查某个 key 是否允许请求
func (k *KeyedTokenBucket) AllowKey(ctx context.Context, key string) bool {
	k.mu.Lock()
	now := time.Now()

	// 到达扫描间隔时清理空闲桶
	if now.Sub(k.lastScan) > k.idleTTL {
		for key, e := range k.buckets {
			if now.Sub(e.lastSeen) > k.idleTTL {
				delete(k.buckets, key)
			}
		}
		k.lastScan = now
	}

	e, ok := k.buckets[key]
	if !ok {
		e = &keyedEntry{bucket: NewTokenBucket(k.capacity, k.refillRate)}
		k.buckets[key] = e
	}
	e.lastSeen = now
	k.mu.Unlock()

	return e.bucket.Allow(ctx)
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
