package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("Token inválido")
	ErrExpiredToken = errors.New("Token expirado")
	ErrRoleChanged  = errors.New("Cambio de rol detectado")
)

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Decode reads the claims of a token issued by the upstream API without
// verifying its signature. The upstream API remains the authority; the
// console only needs the role and expiry to drive its own gates.
func Decode(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &TokenClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// ValidateRefresh decodes a refresh token and rejects it when expired.
func ValidateRefresh(token string, now time.Time) (*TokenClaims, error) {
	claims, err := Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Expired(now) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

// CheckRole compares the role carried by an access token with the role the
// session was opened with. Tokens without a role claim are accepted.
func CheckRole(access string, expected string) error {
	claims, err := Decode(access)
	if err != nil {
		return err
	}
	if claims.Role != "" && expected != "" && string(claims.Role) != expected {
		return ErrRoleChanged
	}
	return nil
}
