// Package auth holds the credential and token core of authgate:
//
//   - Hasher: one-way, salted, deliberately slow password hashing (argon2id
//     by default, bcrypt as an alternative) with constant-time verification;
//   - TokenService: HS256 JWT issuance and the ordered validation pipeline
//     (structure, signature, issuer, audience, expiry with zero skew);
//   - bearer extraction, request-context helpers exposing validated claims to
//     handlers, and the redacted SecurityEvent both transports log.
//
// Nothing here touches the user store.
package auth
