package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const audience = "teemail-dashboard"

type Claims struct {
	jwt.RegisteredClaims

	// Club is the partition key every request is scoped to.
	Club string `json:"club"`
}

type Verified struct {
	Username  string
	Club      string
	ExpiresAt time.Time
}

// Sign issues a dashboard session token (JWT, HS256) for a user of one club.
func Sign(username, club, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("missing session secret")
	}
	if club == "" {
		return "", fmt.Errorf("missing club")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Club: club,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify validates a dashboard session token and returns the identity it carries.
func Verify(tokenString, secret string, now time.Time) (*Verified, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing session secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithAudience(audience),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return nil, fmt.Errorf("token expired")
	}
	if claims.Club == "" {
		return nil, fmt.Errorf("missing club claim")
	}

	return &Verified{
		Username:  claims.Subject,
		Club:      claims.Club,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
