package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/internal/domain/repository"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/dto/response"
	"github.com/sirupsen/logrus"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the record
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// DefaultIdempotencyKeyTTL is how long keys are kept when no TTL is set
	DefaultIdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
	Log  logrus.FieldLogger
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

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// inFlight tracks keys whose first request has not finished yet.
type inFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (f *inFlight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inFlight) release(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}

// Idempotency answers a repeated POST carrying the same Idempotency-Key
// with the stored response instead of running the handler again. Requests
// without the header pass through untouched. Server errors are not stored,
// so the client may retry them.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyKeyTTL
	}
	log := config.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	running := &inFlight{keys: make(map[string]struct{})}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 255 {
			response.BadRequest(c, "Idempotency-Key must be at most 255 characters")
			c.Abort()
			return
		}

		v, _ := c.Get(ContextUserID)
		userID, ok := v.(uuid.UUID)
		if !ok {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		endpoint := c.Request.Method + " " + c.Request.URL.Path
		slot := userID.String() + "|" + key
		if !running.acquire(slot) {
			response.Conflict(c, "A request with this Idempotency-Key is still being processed")
			c.Abort()
			return
		}
		defer running.release(slot)

		existing, err := config.Repo.Find(c.Request.Context(), userID, key)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if existing != nil {
			if existing.Endpoint != endpoint {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		record := &entity.IdempotencyKey{
			Key:          key,
			UserID:       userID,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(ttl),
		}
		if err := config.Repo.Store(c.Request.Context(), record); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			log.WithFields(logrus.Fields{"key": key, "error": err}).Error("Failed to store idempotency record")
		}
	}
}
