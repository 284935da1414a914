package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/authgate/internal/logging"
)

// Outcome values for SecurityEvent.Outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// SecurityEvent is one authentication decision made by a transport.
type SecurityEvent struct {
	Outcome       string
	Transport     string // "http" or "grpc"
	Target        string // route or full gRPC method
	RequestID     string
	Subject       string // empty on failure
	FailureReason string // ValidationError code on failure
	Token         string // raw token, redacted by LogValue
	Latency       time.Duration
}

// LogValue implements slog.LogValuer. The raw token never leaves this method.
func (e SecurityEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("outcome", e.Outcome),
		slog.String("transport", e.Transport),
		slog.String("target", e.Target),
		slog.String("request_id", e.RequestID),
		slog.String("token", RedactToken(e.Token)),
		slog.Duration("latency", e.Latency),
	}
	if e.Subject != "" {
		attrs = append(attrs, slog.String("subject", e.Subject))
	}
	if e.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", e.FailureReason))
	}
	return slog.GroupValue(attrs...)
}

// RedactToken keeps the first 8 characters of a token.
func RedactToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= 8:
		return "***"
	}
	return token[:8] + "..."
}

// LogSecurityEvent writes e at warn level for failures and info otherwise.
func LogSecurityEvent(ctx context.Context, logger logging.Logger, e SecurityEvent) {
	if logger == nil {
		return
	}
	if e.Outcome == OutcomeFailure {
		logger.Warn(ctx, "authentication failed", "auth_event", e)
		return
	}
	logger.Info(ctx, "authentication succeeded", "auth_event", e)
}
