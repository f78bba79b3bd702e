package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit 固定窗口限流：登录用户按用户ID计数，游客按IP计数
// rdb为nil或limit<=0时不限流；Redis出错时放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if window < time.Second {
		window = time.Second
	}
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := "ip:" + c.ClientIP()
		if userID, ok := CurrentUserID(c); ok {
			subject = "user:" + strconv.FormatUint(userID, 10)
		}
		bucket := time.Now().Unix() / int64(window/time.Second)
		key := fmt.Sprintf("ratelimit:%s:%d", subject, bucket)

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Log.WithError(err).Warn("限流计数失败，放行请求")
			c.Next()
			return
		}
		if count == 1 {
			// 过期没设上的话，这个key会一直留在Redis里
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.Log.WithError(err).Warn("设置限流key过期时间失败")
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}
