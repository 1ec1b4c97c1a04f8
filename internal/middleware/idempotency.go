package middleware

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/Erkezh/studypoint-edu/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// idempotencyRecord 缓存的响应；Status 为 0 表示请求仍在处理
type idempotencyRecord struct {
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type recordingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func requestHash(method, path string, body []byte) string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%s %s\n", method, path)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency replays the stored response for a repeated Idempotency-Key
// from the same learner. Requests without the header pass through; 5xx
// responses are not stored so the client may retry.
func Idempotency(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(util.HeaderIdempotencyKey)
		user := util.GetUserFromContext(c)
		if key == "" || rdb == nil || user == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			util.BadRequest(c, "could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		hash := requestHash(c.Request.Method, c.Request.URL.Path, body)
		redisKey := fmt.Sprintf("idempotency:%d:%s", user.UserID, key)

		raw, err := rdb.Get(ctx, redisKey).Bytes()
		switch {
		case err == nil:
			var rec idempotencyRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				logger.Log.Warn("Corrupt idempotency record", zap.String("key", redisKey), zap.Error(err))
				rdb.Del(ctx, redisKey)
				break
			}
			replay(c, &rec, hash)
			return
		case errors.Is(err, redis.Nil):
		default:
			logger.Log.Warn("Idempotency lookup failed, handling request normally", zap.Error(err))
			c.Next()
			return
		}

		pending, _ := json.Marshal(idempotencyRecord{RequestHash: hash})
		reserved, err := rdb.SetNX(ctx, redisKey, pending, ttl).Result()
		if err != nil {
			logger.Log.Warn("Idempotency reservation failed, handling request normally", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			util.Error(c, http.StatusConflict, "request with this Idempotency-Key is in progress")
			c.Abort()
			return
		}

		w := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			rdb.Del(ctx, redisKey)
			return
		}
		done, _ := json.Marshal(idempotencyRecord{
			RequestHash: hash,
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		})
		if err := rdb.Set(ctx, redisKey, done, ttl).Err(); err != nil {
			logger.Log.Warn("Failed to store idempotent response", zap.String("key", redisKey), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, rec *idempotencyRecord, hash string) {
	switch {
	case rec.RequestHash != hash:
		util.Error(c, http.StatusUnprocessableEntity, "Idempotency-Key was used with a different request")
	case rec.Status == 0:
		util.Error(c, http.StatusConflict, "request with this Idempotency-Key is in progress")
	default:
		c.Header(util.HeaderReplayed, "true")
		c.Data(rec.Status, rec.ContentType, rec.Body)
	}
	c.Abort()
}
