// Package testutil provides testing utilities and fixtures for the portal session client.
package testutil

import (
	"encoding/json"
	"time"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/golang-jwt/jwt/v5"
)

const testSigningKey = "portal-session-test-key"

// TokenBuilder builds signed JWTs for tests. The client never verifies signatures,
// so the key only needs to produce a well-formed token.
type TokenBuilder struct {
	claims jwt.MapClaims
}

// NewToken creates a TokenBuilder with a subject and no expiry.
func NewToken() *TokenBuilder {
	return &TokenBuilder{claims: jwt.MapClaims{"sub": "42"}}
}

// ExpiresAt sets the exp claim.
func (b *TokenBuilder) ExpiresAt(t time.Time) *TokenBuilder {
	b.claims["exp"] = t.Unix()
	return b
}

// WithClaim sets an arbitrary claim.
func (b *TokenBuilder) WithClaim(name string, value any) *TokenBuilder {
	b.claims[name] = value
	return b
}

// String returns the encoded token. It panics on signing failure, which cannot happen with HS256 and a static key.
func (b *TokenBuilder) String() string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, b.claims).SignedString([]byte(testSigningKey))
	if err != nil {
		panic(err)
	}
	return s
}

// LoginResponseBuilder provides a fluent interface for building token-exchange responses.
type LoginResponseBuilder struct {
	access  string
	refresh string
	user    domainsession.UserProfile
}

// NewLoginResponse creates a builder with sensible defaults for user alice at tenant acme.
func NewLoginResponse() *LoginResponseBuilder {
	companyID := int64(7)
	return &LoginResponseBuilder{
		access:  NewToken().ExpiresAt(TestTime().Add(time.Hour)).String(),
		refresh: "refresh-token",
		user: domainsession.UserProfile{
			UserID:             42,
			Username:           "alice",
			Email:              "alice@acme.example",
			Role:               "admin",
			CompanyName:        "Acme Bestattungen",
			CompanyID:          &companyID,
			MitarbeiterKuerzel: "AL",
			FirstName:          "Alice",
			LastName:           "Liddell",
			TenantName:         "acme",
		},
	}
}

// WithAccess sets the access token.
func (b *LoginResponseBuilder) WithAccess(token string) *LoginResponseBuilder {
	b.access = token
	return b
}

// WithRefresh sets the refresh token.
func (b *LoginResponseBuilder) WithRefresh(token string) *LoginResponseBuilder {
	b.refresh = token
	return b
}

// WithTenant sets tenant_name.
func (b *LoginResponseBuilder) WithTenant(tenant string) *LoginResponseBuilder {
	b.user.TenantName = tenant
	return b
}

// WithoutCompany clears company_id.
func (b *LoginResponseBuilder) WithoutCompany() *LoginResponseBuilder {
	b.user.CompanyID = nil
	return b
}

// Profile returns the user profile the response will carry.
func (b *LoginResponseBuilder) Profile() domainsession.UserProfile {
	return b.user
}

// Access returns the access token the response will carry.
func (b *LoginResponseBuilder) Access() string { return b.access }

// JSON renders the response body in the wire shape of the token endpoint.
func (b *LoginResponseBuilder) JSON() []byte {
	body := map[string]any{
		"access":  b.access,
		"refresh": b.refresh,
	}
	raw, _ := json.Marshal(b.user)
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	for k, v := range fields {
		body[k] = v
	}
	out, _ := json.Marshal(body)
	return out
}
