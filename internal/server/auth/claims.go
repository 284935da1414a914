package auth

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an authgate token: subject (username), issuer,
// audience, issued-at, not-before, expiry and a unique token id, all as
// registered JWT claims. No custom or role claims are carried.
type Claims struct {
	jwt.RegisteredClaims
}

// Username is the authenticated identity asserted by the token.
func (c *Claims) Username() string {
	return c.Subject
}

// UnmarshalJSON decodes the registered claims and then re-reads the time
// claims from their decimal text. jwt.NumericDate goes through float64,
// which can land a fractional timestamp a few hundred nanoseconds early.
func (c *Claims) UnmarshalJSON(b []byte) error {
	var rc jwt.RegisteredClaims
	if err := json.Unmarshal(b, &rc); err != nil {
		return err
	}

	var times struct {
		ExpiresAt json.Number `json:"exp"`
		NotBefore json.Number `json:"nbf"`
		IssuedAt  json.Number `json:"iat"`
	}
	if err := json.Unmarshal(b, &times); err != nil {
		return err
	}

	for _, f := range []struct {
		raw json.Number
		dst **jwt.NumericDate
	}{
		{times.ExpiresAt, &rc.ExpiresAt},
		{times.NotBefore, &rc.NotBefore},
		{times.IssuedAt, &rc.IssuedAt},
	} {
		if f.raw == "" {
			continue
		}
		t, ok := parseNumericDate(string(f.raw))
		if ok {
			*f.dst = &jwt.NumericDate{Time: t}
		}
	}

	c.RegisteredClaims = rc
	return nil
}

// parseNumericDate reads "<seconds>[.<fraction>]" exactly, to the
// nanosecond. Anything else (exponents, signs) is left to the float path.
func parseNumericDate(s string) (time.Time, bool) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || strings.ContainsAny(s, "eE+-") {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	var nanos int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		nanos, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
	}
	return time.Unix(sec, nanos).UTC(), true
}

var _ json.Unmarshaler = (*Claims)(nil)
