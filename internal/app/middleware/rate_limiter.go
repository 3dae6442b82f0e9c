package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"gatepulse-http-service/internal/error/code"
	"gatepulse-http-service/internal/error/response"
)

// TokenBucket 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64    // 每秒填充的令牌数
	capacity   int        // 桶的容量
	tokens     float64    // 当前令牌数
	lastRefill time.Time  // 上次填充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	// 填充令牌
	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	// 尝试获取令牌
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// 限流器映射
var (
	limiters   = make(map[string]*TokenBucket)
	limitersMu sync.Mutex
)

// getLimiter 按键获取或创建限流器
func getLimiter(key string, rate float64, burst int) *TokenBucket {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	limiter, exists := limiters[key]
	if !exists {
		limiter = NewTokenBucket(rate, burst)
		limiters[key] = limiter
	}
	return limiter
}

// rateLimit 通用限流中间件
func rateLimit(rate float64, burst int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := getLimiter(keyFunc(c), rate, burst)
		if !limiter.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "请求频率过高，请稍后再试", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter 按IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return rateLimit(rate, burst, func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	})
}

// PathRateLimiter 按路径限流
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return rateLimit(rate, burst, func(c *gin.Context) string {
		return "path:" + c.Request.URL.Path
	})
}
