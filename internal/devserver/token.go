package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims is the registered claim set plus the user id and token type.
type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"user_id"`
	Type   string `json:"typ"`
}

// Tokens issues and verifies access and refresh tokens.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokens(secret []byte, accessTTL, refreshTTL time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: now}
}

func (t *Tokens) Issue(userID int, typ string) (string, error) {
	ttl := t.accessTTL
	if typ == TokenRefresh {
		ttl = t.refreshTTL
	}
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Type:   typ,
	})

	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return s, nil
}

// Pair issues a fresh access and refresh token for userID.
func (t *Tokens) Pair(userID int) (access, refresh string, err error) {
	if access, err = t.Issue(userID, TokenAccess); err != nil {
		return "", "", err
	}
	if refresh, err = t.Issue(userID, TokenRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Parse verifies token and returns its user id. A token of another type is
// rejected as invalid.
func (t *Tokens) Parse(token, typ string) (int, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Type != typ {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}
