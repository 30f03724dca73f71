// Package auth issues and verifies access tokens and hashes passwords
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token expired")
)

// Identity is what a valid token says about its bearer
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Claims are the JWT claims carried by an access token
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Tokens signs and parses HS256 access tokens
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer
func NewTokens(secret, issuer string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for id and returns it with its expiry time
func (t *Tokens) Issue(id Identity) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)

	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   id.UserID,
			Issuer:    t.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: exp.Unix(),
		},
		Email: id.Email,
		Role:  id.Role,
	})

	signed, err := tk.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns the identity it was issued for
func (t *Tokens) Parse(token string) (Identity, error) {
	var claims Claims
	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	now := t.now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return Identity{}, ErrTokenExpired
	}
	if t.issuer != "" && !claims.VerifyIssuer(t.issuer, true) {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
