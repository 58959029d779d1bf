package jwtPkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sign issues an HS256 token carrying Data as claims. The secret is passed in
// explicitly so callers can hold it in their own configuration.
func Sign(secret string, data map[string]interface{}, expiresIn time.Duration) (string, int64, error) {
	if secret == "" {
		return "", 0, errors.New("jwt secret is empty")
	}

	expiredAt := time.Now().Add(expiresIn).Unix()

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt
	claims["authorization"] = true

	for k, v := range data {
		claims[k] = v
	}

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(secret))
	if err != nil {
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

// Parse verifies an access token and returns its claims.
func Parse(secret, accessToken string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// FromAuthHeader extracts the bearer token from an Authorization header value.
func FromAuthHeader(header string) (string, error) {
	if header == "" {
		return "", errors.New("empty Authorization header")
	}

	parts := strings.Split(header, "Bearer ")
	if len(parts) != 2 {
		return "", errors.New("invalid Authorization format")
	}

	accessToken := strings.TrimSpace(parts[1])
	if accessToken == "" {
		return "", errors.New("empty token")
	}

	return accessToken, nil
}
