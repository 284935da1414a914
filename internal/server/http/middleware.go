package http

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// requestID propagates X-Request-ID, minting one when the client sent none
// or sent one RequestIDOrNew rejects.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.RequestIDOrNew(c.GetHeader(common.RequestIDHeaderName))
		c.Header(common.RequestIDHeaderName, id)
		c.Request = c.Request.WithContext(auth.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", auth.RequestIDFromContext(c.Request.Context()),
		)
	}
}

// JWTAuth rejects requests without a valid bearer token and stores the
// validated claims in the request context otherwise. The rejection body is
// the same whatever check failed.
func JWTAuth(tokens *auth.TokenService, logger logging.Logger, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		event := auth.SecurityEvent{
			Transport: "http",
			Target:    c.Request.Method + " " + c.FullPath(),
			RequestID: auth.RequestIDFromContext(ctx),
		}

		token, err := auth.BearerToken(c.GetHeader(common.AuthorizationHeaderName))
		var claims *auth.Claims
		if err == nil {
			event.Token = token
			claims, err = tokens.Validate(token, now())
		}

		event.Latency = time.Since(start)
		if err != nil {
			event.Outcome = auth.OutcomeFailure
			event.FailureReason = auth.ErrorCodeOf(err)
			auth.LogSecurityEvent(ctx, logger, event)
			unauthorized(c)
			return
		}

		event.Outcome = auth.OutcomeSuccess
		event.Subject = claims.Subject
		auth.LogSecurityEvent(ctx, logger, event)

		c.Request = c.Request.WithContext(auth.WithClaims(ctx, claims))
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", common.BearerScheme)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
