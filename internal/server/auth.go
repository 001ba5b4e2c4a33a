package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

const (
	issuer     = "appfeed"
	accountKey = "account"
)

// Claims is the JWT payload accepted by the API.
type Claims struct {
	jwt.RegisteredClaims
	Account string `json:"account"`
}

// IssueToken signs a token for account that expires after ttl.
func IssueToken(secret, account string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("issue token: secret cannot be empty")
	}
	if strings.TrimSpace(account) == "" {
		return "", errors.New("issue token: account cannot be empty")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   account,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Account: account,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// ParseToken validates tokenString and returns the account it was issued for.
func ParseToken(secret, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Account) == "" {
		return "", fmt.Errorf("%w: token carries no account", domain.ErrUnauthorized)
	}
	return claims.Account, nil
}

// jwtAuth rejects requests without a valid bearer token and stores the
// token's account in the gin context.
func jwtAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, fmt.Errorf("%w: missing Authorization header", domain.ErrUnauthorized))
			return
		}
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			abort(c, fmt.Errorf("%w: expected a Bearer token", domain.ErrUnauthorized))
			return
		}
		account, err := ParseToken(secret, tokenString)
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

// accountOf returns the authenticated account of the request.
func accountOf(c *gin.Context) string {
	return c.GetString(accountKey)
}
