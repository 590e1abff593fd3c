package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// DefaultIdempotencyKeyTTL is how long keys are valid when not configured
	DefaultIdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	TTL    time.Duration
	Logger logrus.FieldLogger
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

// Idempotency replays the stored response when a key is reused. Requests
// without a key pass through.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		serveIdempotent(c, config, key)
	}
}

// IdempotencyRequired is the stricter variant used for bill intake and
// settlement: the key is mandatory.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}
		serveIdempotent(c, config, key)
	}
}

func serveIdempotent(c *gin.Context, config IdempotencyConfig, key string) {
	if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
		c.Next()
		return
	}

	userIDValue, exists := c.Get("user_id")
	userID, ok := userIDValue.(uuid.UUID)
	if !exists || !ok {
		response.Unauthorized(c, "User not authenticated")
		c.Abort()
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "Could not read request body")
		c.Abort()
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	hash := requestHash(body)

	// the concrete path, so one key cannot replay another bill's settlement
	endpoint := c.Request.Method + " " + c.Request.URL.Path

	existing, err := config.Repo.GetByKey(c.Request.Context(), key, userID, endpoint)
	if err != nil {
		if config.Logger != nil {
			logger.LogError(config.Logger, "middleware", "Idempotency", "Error loading idempotency key", key, err)
		}
		response.Error(c, err)
		c.Abort()
		return
	}

	now := time.Now()
	if existing != nil && !existing.IsExpired(now) {
		if existing.RequestHash != "" && existing.RequestHash != hash {
			response.Error(c, apperror.NewFieldError("idempotency_key", "Key was already used with a different request body"))
			c.Abort()
			return
		}
		c.Header("X-Idempotency-Replayed", "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
		c.Abort()
		return
	}

	blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
	c.Writer = blw

	c.Next()

	// Only successful responses are replayed; a rejected request may be
	// retried with the same key once corrected.
	status := c.Writer.Status()
	if status < 200 || status >= 300 {
		return
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyKeyTTL
	}
	ikey := &entity.IdempotencyKey{
		Key:          key,
		UserID:       userID,
		Endpoint:     endpoint,
		RequestHash:  hash,
		ResponseCode: status,
		ResponseBody: blw.body.String(),
		ExpiresAt:    now.Add(ttl),
	}
	if err := config.Repo.Create(c.Request.Context(), ikey); err != nil && config.Logger != nil {
		logger.LogError(config.Logger, "middleware", "Idempotency", "Error storing idempotency key", key, err)
	}
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
