package server

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thoas/go-funk"
)

// Claims is the decoded connection identity. The core never sees the raw
// credential, only this struct.
type Claims struct {
	Nickname string   `json:"nickname"`
	UUID     string   `json:"uuid"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

func decodeClaims(token, secret string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("missing token")
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Nickname == "" || claims.UUID == "" {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// hasAnyRole reports whether the session holds at least one of the wanted
// roles.
func hasAnyRole(roles, wanted []string) bool {
	for _, role := range roles {
		if funk.ContainsString(wanted, role) {
			return true
		}
	}
	return false
}
