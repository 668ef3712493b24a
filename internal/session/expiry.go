package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/ecosistema/ecosistema-session/internal/api"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ErrTokenExpired is returned when the backend hands out an access token
// whose expiry has already passed.
var ErrTokenExpired = errors.New("session: access token already expired")

// maxExpiresIn caps expires_in so the conversion to a Duration can't
// overflow.
const maxExpiresIn = 10 * 365 * 24 * 60 * 60

// resolveExpiry works out when the access token in resp stops being valid.
// Order: expires_in, expires_at, the token's own exp claim. Zero means
// unknown.
func resolveExpiry(resp *api.AuthResponse, now time.Time) time.Time {
	if resp.ExpiresIn > 0 {
		return now.Add(time.Duration(min(resp.ExpiresIn, maxExpiresIn)) * time.Second)
	}
	if resp.ExpiresAt != "" {
		t, err := parseTimestamp(resp.ExpiresAt)
		if err == nil {
			return t
		}
		log.Warn().Err(err).Str("expiresAt", resp.ExpiresAt).Msg("ignoring unparseable token expiry")
	}
	if t, ok := tokenExpiry(resp.AccessToken); ok {
		return t
	}
	return time.Time{}
}

// checkExpiry rejects a known expiry that isn't in the future.
func checkExpiry(exp, now time.Time) error {
	if !exp.IsZero() && !exp.After(now) {
		return ErrTokenExpired
	}
	return nil
}

// parseTimestamp accepts RFC 3339 timestamps and unix seconds.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if secs, convErr := strconv.ParseInt(s, 10, 64); convErr == nil {
		return time.Unix(secs, 0), nil
	}
	return time.Time{}, err
}

// tokenExpiry reads the exp claim of a JWT access token without verifying
// it; the signature is the backend's business.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
