package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestContextClaims(t *testing.T) {
	ctx := context.Background()

	_, ok := GetClaims(ctx)
	assert.False(t, ok)
	assert.Empty(t, UsernameFromContext(ctx))

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}
	ctx = WithClaims(ctx, claims)

	got, ok := GetClaims(ctx)
	assert.True(t, ok)
	assert.Same(t, claims, got)
	assert.Equal(t, "alice", UsernameFromContext(ctx))
}

func TestContextRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestRequestIDOrNew(t *testing.T) {
	tests := []struct {
		name string
		id   string
		keep bool
	}{
		{"plain", "abc-123", true},
		{"max length", strings.Repeat("a", 128), true},
		{"punctuation", "req_9/x:y=z~", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 129), false},
		{"space", "abc 123", false},
		{"newline", "abc\nforged: 1", false},
		{"control", "abc\x00", false},
		{"non-ascii", "r\u00e9q", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequestIDOrNew(tt.id)
			if tt.keep {
				assert.Equal(t, tt.id, got)
				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}
