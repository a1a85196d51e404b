// Package jwtclaims reads claims from bearer tokens without verifying them.
// Signature checks belong to the backend; the client only needs the declared expiry.
package jwtclaims

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

var _ ports.TokenDecoder = Decoder{}

// ErrEmptyToken is returned for an empty token string.
var ErrEmptyToken = errors.New("token is empty")

// Padded base64 segments are accepted as well as the unpadded JWT form.
var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decoder extracts exp from a JWT payload.
type Decoder struct{}

// Expiry returns the exp claim. ok is false when the token decodes but has no exp.
func (Decoder) Expiry(token string) (time.Time, bool, error) {
	if token == "" {
		return time.Time{}, false, ErrEmptyToken
	}

	// header.payload without a signature segment is accepted like a signed token.
	if strings.Count(token, ".") == 1 {
		token += "."
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("decode token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, false, nil
	}
	return exp.Time, true, nil
}
