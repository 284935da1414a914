package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the bearer token on protected requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// RequestIDHeaderName is the HTTP header used to correlate a request across logs.
const RequestIDHeaderName = "X-Request-ID"
