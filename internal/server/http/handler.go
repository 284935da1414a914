package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// Fixed response texts. Clients match on these, so keep them stable.
const (
	msgRegistered         = "User registered successfully."
	msgUserExists         = "User already exists."
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidRequest     = "Invalid request."
	msgInternal           = "Internal server error."
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

type meResponse struct {
	Username string `json:"username"`
	Expires  string `json:"expires"`
}

// formatExpiry renders t as ISO-8601 in UTC, with fractional seconds when present.
func formatExpiry(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *HTTPServer) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	_, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.String(http.StatusOK, msgRegistered)
	case errors.Is(err, common.ErrDuplicateUser):
		c.String(http.StatusBadRequest, msgUserExists)
	case errors.Is(err, common.ErrInvalidRequest):
		c.String(http.StatusBadRequest, msgInvalidRequest)
	default:
		s.logger.Error(c.Request.Context(), "register failed", "error", err)
		c.String(http.StatusInternalServerError, msgInternal)
	}
}

func (s *HTTPServer) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, loginResponse{Token: token.AccessToken, Expires: formatExpiry(token.ExpiresAt)})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.String(http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, common.ErrInvalidRequest):
		c.String(http.StatusBadRequest, msgInvalidRequest)
	default:
		s.logger.Error(c.Request.Context(), "login failed", "error", err)
		c.String(http.StatusInternalServerError, msgInternal)
	}
}

func (s *HTTPServer) me(c *gin.Context) {
	claims, ok := auth.GetClaims(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}
	resp := meResponse{Username: claims.Subject}
	if claims.ExpiresAt != nil {
		resp.Expires = formatExpiry(claims.ExpiresAt.Time)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
