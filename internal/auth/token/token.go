// Package token issues and parses the HS256 bearer tokens used by the API.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
)

var ErrMalformed = errors.New("malformed token claims")

type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"tipo"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clock.Clock
}

func NewIssuer(secret string, ttl time.Duration, issuer string, clk clock.Clock) *Issuer {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, issuer: issuer, clock: clk}
}

// Provide builds the issuer from application config.
func Provide(cfg config.Config, clk clock.Clock) *Issuer {
	return NewIssuer(cfg.AuthJWTSecret, cfg.AuthJWTTTL, cfg.AuthJWTIssuer, clk)
}

func (i *Issuer) Issue(user *domain.User) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *Issuer) Parse(raw string) (*domain.Principal, error) {
	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrMalformed
	}
	id, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: id", ErrMalformed)
	}
	if !c.Role.Valid() {
		return nil, fmt.Errorf("%w: tipo", ErrMalformed)
	}
	return &domain.Principal{
		Subject: c.UserID,
		UserID:  snowflake.ID(id),
		Email:   c.Email,
		Role:    c.Role,
		Method:  domain.MethodBearer,
	}, nil
}
