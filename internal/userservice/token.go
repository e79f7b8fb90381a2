package userservice

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWeakSecret   = errors.New("token secret must be at least 32 bytes")
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenMaker signs and verifies self-contained HS256 tokens. The token
// carries the principal's identity and an absolute expiry; nothing is stored
// server-side.
type tokenMaker struct {
	secret []byte
	ttl    time.Duration
	clock  common.Clock
}

func newTokenMaker(secret []byte, ttl time.Duration, clock common.Clock) (*tokenMaker, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}

	return &tokenMaker{secret: secret, ttl: ttl, clock: clock}, nil
}

func (tm *tokenMaker) sign(user *User) (*AuthToken, error) {
	now := tm.clock.Now()
	expiry := now.Add(tm.ttl)

	claims := tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return nil, err
	}

	return &AuthToken{Token: token, Expiry: expiry}, nil
}

// parse verifies the signature and expiry and returns the encoded user id.
func (tm *tokenMaker) parse(token string) (uuid.UUID, error) {
	var claims tokenClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.clock.Now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, ErrExpiredToken
		default:
			return uuid.Nil, ErrInvalidToken
		}
	}

	if !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}
