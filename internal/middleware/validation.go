package middleware

import (
	"mime"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script.*?>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)<iframe.*?>`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`\.\.\\`),
	regexp.MustCompile(`(?i)%2e%2e(%2f|%5c)`),
}

type ValidationMiddleware struct {
	logger *logger.Logger
}

func NewValidationMiddleware(logger *logger.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{
		logger: logger,
	}
}

// SanitizeInput strips control characters from query parameters.
func (m *ValidationMiddleware) SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		changed := false
		for key, values := range query {
			for i, value := range values {
				if sanitized := sanitizeString(value); sanitized != value {
					m.logger.Info("Sanitized query parameter", zap.String("key", key))
					values[i] = sanitized
					changed = true
				}
			}
		}
		if changed {
			c.Request.URL.RawQuery = query.Encode()
		}

		c.Next()
	}
}

// ValidateContentType rejects bodies that are not one of allowedTypes.
func (m *ValidationMiddleware) ValidateContentType(allowedTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || !slices.Contains(allowedTypes, mediaType) {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, dto.Error{
				Error: "unsupported Content-Type, expected one of " + strings.Join(allowedTypes, ", "),
				Kind:  string(apperror.KindInvalidInput),
			})
			return
		}

		c.Next()
	}
}

// ValidateRequestSize limits request body size
func (m *ValidationMiddleware) ValidateRequestSize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.Error{
				Error: "request body too large",
				Kind:  string(apperror.KindInvalidInput),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// BlockSuspiciousPatterns rejects markup and path traversal in the path or query.
func (m *ValidationMiddleware) BlockSuspiciousPatterns() gin.HandlerFunc {
	return func(c *gin.Context) {
		suspicious := containsSuspiciousPattern(c.Request.URL.Path)
		for _, values := range c.Request.URL.Query() {
			for _, value := range values {
				suspicious = suspicious || containsSuspiciousPattern(value)
			}
		}
		if suspicious {
			m.logger.Warn("Blocked suspicious request",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()))
			abortWithError(c, apperror.New(apperror.KindInvalidInput, "invalid request"))
			return
		}

		c.Next()
	}
}

func sanitizeString(input string) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		return -1
	}, input)
}

func containsSuspiciousPattern(input string) bool {
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}
