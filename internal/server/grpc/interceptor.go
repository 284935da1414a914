package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// publicServicePrefix marks methods reachable without a token.
const publicServicePrefix = "/grpc.health.v1.Health/"

var errUnauthenticated = status.Error(codes.Unauthenticated, "unauthorized")

func isPublic(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, publicServicePrefix)
}

// authenticate validates the bearer token in the incoming metadata and returns
// a context carrying its claims.
func (s *GRPCServer) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	start := time.Now()

	md, _ := metadata.FromIncomingContext(ctx)

	requestID := auth.RequestIDOrNew(firstValue(md, strings.ToLower(common.RequestIDHeaderName)))
	ctx = auth.WithRequestID(ctx, requestID)

	event := auth.SecurityEvent{
		Transport: "grpc",
		Target:    fullMethod,
		RequestID: requestID,
	}

	token, err := auth.BearerToken(firstValue(md, common.AuthorizationHeaderName))
	var claims *auth.Claims
	if err == nil {
		event.Token = token
		claims, err = s.tokens.Validate(token, s.now())
	}

	event.Latency = time.Since(start)
	if err != nil {
		event.Outcome = auth.OutcomeFailure
		event.FailureReason = auth.ErrorCodeOf(err)
		auth.LogSecurityEvent(ctx, s.logger, event)
		return nil, errUnauthenticated
	}

	event.Outcome = auth.OutcomeSuccess
	event.Subject = claims.Subject
	auth.LogSecurityEvent(ctx, s.logger, event)

	return auth.WithClaims(ctx, claims), nil
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if isPublic(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

// authStream overrides the stream context with the authenticated one.
type authStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authStream) Context() context.Context {
	return a.ctx
}

func (s *GRPCServer) accessTokenStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if isPublic(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authStream{ServerStream: ss, ctx: ctx})
}
