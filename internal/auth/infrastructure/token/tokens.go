package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
)

type claims struct {
	Status domain.Status `json:"status"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HMAC bearer tokens with a fixed lifetime.
type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

func NewIssuer(secret, algorithm string, ttl time.Duration) (*Issuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &Issuer{secret: []byte(secret), method: method, ttl: ttl}, nil
}

func (i *Issuer) Issue(p domain.Principal, now time.Time) (string, error) {
	c := claims{
		Status: p.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(i.method, c).SignedString(i.secret)
}

func (i *Issuer) Parse(token string, now time.Time) (domain.Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: could not validate credentials: %v", apperr.ErrUnauthenticated, err)
	}
	if c.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: token has no subject", apperr.ErrUnauthenticated)
	}
	return domain.Principal{Username: c.Subject, Status: c.Status}, nil
}
