package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT without checking its signature.
// The zero time is returned for tokens that carry no exp claim. The result
// is informational only; the server remains the authority on validity.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
