package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidState is returned for tampered, expired or malformed state values.
var ErrInvalidState = errors.New("invalid oauth state")

const stateIssuer = "secretwall"

// GenerateState signs nonce into a short-lived HS256 token used as the OAuth
// state parameter. The same nonce is kept in the browser session so the
// callback can prove it completes a handshake this browser started.
func GenerateState(secret []byte, nonce string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   stateIssuer,
		"nonce": nonce,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString(secret)
}

// ParseState verifies a state produced by GenerateState and returns its nonce.
func ParseState(secret []byte, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidState
	}
	nonce, _ := claims["nonce"].(string)
	if nonce == "" {
		return "", fmt.Errorf("%w: missing nonce", ErrInvalidState)
	}
	return nonce, nil
}
