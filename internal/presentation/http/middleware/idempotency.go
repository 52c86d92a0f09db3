package middleware

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/handler"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyPendingTTL bounds a reservation whose request never finished
	IdempotencyPendingTTL = time.Minute
	maxIdempotencyKey     = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST that carries an
// Idempotency-Key already processed for the caller. The key is reserved
// before the handler runs, so a concurrent duplicate gets 409 instead of
// running twice. Only successful responses are kept; a rejected request
// releases the key and can be retried with it.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > maxIdempotencyKey {
			response.BadRequest(c, IdempotencyKeyHeader+" is too long")
			c.Abort()
			return
		}

		userID := handler.GetUserID(c)
		if userID == uuid.Nil {
			c.Next()
			return
		}
		endpoint := c.Request.Method + " " + c.Request.URL.Path
		ctx := context.WithoutCancel(c.Request.Context())

		reserved, err := config.Repo.Reserve(ctx, &entity.IdempotencyKey{
			Key:       idempotencyKey,
			UserID:    userID,
			Endpoint:  endpoint,
			ExpiresAt: time.Now().Add(IdempotencyPendingTTL),
		})
		if err != nil {
			log.Printf("idempotency: reserve failed: %v", err)
			c.Next()
			return
		}

		if !reserved {
			existing, err := config.Repo.GetByKey(ctx, idempotencyKey, userID)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			switch {
			case existing == nil || existing.IsPending():
				response.ErrorWithCode(c, http.StatusConflict, "A request with this "+IdempotencyKeyHeader+" is still in progress")
			case existing.Endpoint != endpoint:
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, IdempotencyKeyHeader+" was already used for another request")
			default:
				c.Header("X-Idempotency-Replayed", "true")
				c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			}
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := config.Repo.Release(ctx, idempotencyKey, userID); err != nil {
				log.Printf("idempotency: failed to release key: %v", err)
			}
			return
		}
		ikey := &entity.IdempotencyKey{
			Key:          idempotencyKey,
			UserID:       userID,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Complete(ctx, ikey); err != nil {
			log.Printf("idempotency: failed to store key: %v", err)
		}
	}
}

// PurgeExpiredKeys deletes expired keys every interval until ctx is done
func PurgeExpiredKeys(ctx context.Context, repo repository.IdempotencyRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Printf("idempotency: purge failed: %v", err)
			}
		}
	}
}
