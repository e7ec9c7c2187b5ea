package auth

import (
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ExpiresAtMillis returns the token's exp claim as milliseconds since epoch.
// A token without an exp claim, or one that cannot be parsed, returns 0 and
// therefore evaluates as already expired.
func (t Token) ExpiresAtMillis() int64 {
	claims := t.claims()
	if claims == nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.UnixMilli()
}

// Username extracts the subject's username from the token claims, preferring
// the provider-specific username claims over the bare subject.
func (t Token) Username() string {
	claims := t.claims()
	if claims == nil {
		return ""
	}
	if u, ok := claims["username"].(string); ok && u != "" {
		return u
	}
	if u, ok := claims["cognito:username"].(string); ok && u != "" {
		return u
	}
	sub, _ := claims.GetSubject()
	return sub
}

func (t Token) claims() jwt.MapClaims {
	if t.Raw == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.Raw, claims); err != nil {
		log.Debug().Err(err).Msg("Failed to parse token claims")
		return nil
	}
	return claims
}
