package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/metrics"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP Request", fields...)
		default:
			logger.Info("HTTP Request", fields...)
		}
	}
}

// Metrics records request counts and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ErrorHandler logs errors attached to the context. Handlers have already
// written the client response through helpers.RespondError; a bare error
// with nothing written becomes a generic 500.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get("request_id")

		logger.Error("Request error",
			zap.Any("request_id", requestID),
			zap.Error(err.Err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// Recovery turns panics into a logged 500 response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestID, _ := c.Get("request_id")
		logger.Error("panic recovered",
			zap.Any("request_id", requestID),
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, helpers.ErrorResponse("Internal server error"))
	})
}

// AuthDeps is what the auth middleware needs to turn a token into a principal.
type AuthDeps struct {
	Tokens     *helpers.TokenIssuer
	Revoker    session.Revoker
	Accounts   models.AccountRepo
	Companions models.CompanionRepo
	Logger     *zap.Logger
}

// TokenFromRequest reads the session cookie, falling back to a bearer header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(helpers.CookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthMiddleware accepts the session cookie or a bearer token, rejects
// revoked tokens and loads the account or companion behind it.
func AuthMiddleware(deps AuthDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			helpers.RespondError(c, apperr.Unauthorized("Authentication token not found"))
			return
		}

		claims, err := deps.Tokens.Verify(token)
		if err != nil {
			deps.Logger.Debug("token rejected", zap.Error(err))
			helpers.RespondError(c, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		if deps.Revoker != nil && claims.ID != "" {
			revoked, err := deps.Revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				helpers.RespondError(c, apperr.Internal("Failed to check session", err))
				return
			}
			if revoked {
				helpers.RespondError(c, apperr.Unauthorized("Session has been logged out"))
				return
			}
		}

		enhanced := &helpers.EnhancedClaims{CustomClaims: claims, Token: token}
		if claims.Role == models.RoleCompanion {
			companion, err := deps.Companions.FindCompanionByID(c.Request.Context(), enhanced.CompanionObjectID())
			if err != nil {
				helpers.RespondError(c, principalErr(err, "Companion no longer exists"))
				return
			}
			enhanced.Companion = companion
		} else {
			account, err := deps.Accounts.FindAccountByID(c.Request.Context(), enhanced.UserObjectID())
			if err != nil {
				helpers.RespondError(c, principalErr(err, "User no longer exists"))
				return
			}
			if account.Role != claims.Role {
				helpers.RespondError(c, apperr.Unauthorized("Token role does not match account"))
				return
			}
			enhanced.Account = account
		}

		c.Set("user", enhanced)
		c.Next()
	}
}

func principalErr(err error, gone string) error {
	if errors.Is(err, models.ErrNotFound) {
		return apperr.Unauthorized(gone)
	}
	return apperr.Internal("Failed to load principal", err)
}

// RequireRoles allows the request through only for the listed roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			helpers.RespondError(c, apperr.Unauthorized("Unauthorized access"))
			return
		}
		if !claims.HasRole(roles...) {
			helpers.RespondError(c, apperr.Forbidden("You do not have access to this resource"))
			return
		}
		c.Next()
	}
}

// Claims returns the principal set by AuthMiddleware.
func Claims(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	claims, ok := v.(*helpers.EnhancedClaims)
	return claims, ok && claims != nil
}
