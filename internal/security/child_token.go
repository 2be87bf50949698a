package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidChildToken is returned for malformed, expired or forged tokens
var ErrInvalidChildToken = errors.New("invalid child token")

// ChildClaims identifies the child a parent selected on this device
type ChildClaims struct {
	ChildID int64 `json:"child_id"`
	jwt.RegisteredClaims
}

// ChildTokenIssuer signs child selection tokens with HS256
type ChildTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewChildTokenIssuer creates an issuer. Tokens live for ttl.
func NewChildTokenIssuer(secret string, ttl time.Duration) *ChildTokenIssuer {
	return &ChildTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token binding childID to userID
func (c *ChildTokenIssuer) Issue(userID, childID int64) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(c.ttl)
	claims := ChildClaims{
		ChildID: childID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign child token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates the token and returns the user and child ids it carries
func (c *ChildTokenIssuer) Parse(token string) (userID, childID int64, err error) {
	claims := &ChildClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return 0, 0, ErrInvalidChildToken
	}

	userID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ChildID == 0 {
		return 0, 0, ErrInvalidChildToken
	}
	return userID, claims.ChildID, nil
}
