package session

// Package session contains domain-level types for the client session lifecycle.
// It is pure and free of framework/adapter concerns.

import (
	"encoding/json"
	"strconv"
	"time"
)

// Persisted key names. The names are a contract shared with other clients of the same store.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyUserData        = "user_data"
	KeyTenantName      = "tenantName"
	KeyTokenExpiration = "token_expiration"
	KeyCompanyData     = "company_data"
)

// AllKeys lists every key owned by a session. Logout clears all of them in one pass.
func AllKeys() []string {
	return []string{
		KeyAccessToken,
		KeyRefreshToken,
		KeyUserData,
		KeyTenantName,
		KeyTokenExpiration,
		KeyCompanyData,
	}
}

// State is the session controller's stable state.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// TerminationReason records why a session ended.
type TerminationReason string

const (
	ReasonUser         TerminationReason = "user"
	ReasonUnauthorized TerminationReason = "unauthorized"
	ReasonTokenExpired TerminationReason = "token_expired"
	ReasonIdleTimeout  TerminationReason = "idle_timeout"
)

// View is a navigation target.
type View string

const (
	ViewLogin     View = "/login"
	ViewDashboard View = "/dashboard"
)

// InteractionKind identifies a user interaction that counts as activity.
type InteractionKind string

const (
	InteractionPointerMove InteractionKind = "pointer_move"
	InteractionKeyPress    InteractionKind = "key_press"
	InteractionScroll      InteractionKind = "scroll"
)

// Interaction is a single observed user interaction.
type Interaction struct {
	Kind InteractionKind
	At   time.Time
}

// CredentialPair is the bearer credential pair issued at login.
type CredentialPair struct {
	Access  string
	Refresh string
}

// UserProfile is the denormalized user snapshot captured at login.
// JSON tags match the token exchange response and the persisted user_data document.
type UserProfile struct {
	UserID             int64  `json:"user_id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	CompanyName        string `json:"company_name"`
	CompanyID          *int64 `json:"company_id"`
	MitarbeiterKuerzel string `json:"mitarbeiter_kuerzel"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	TenantName         string `json:"tenant_name"`
}

// CompanyProfile is the presentational company snapshot fetched after login.
// Raw holds the full document as returned by the server.
type CompanyProfile struct {
	HeaderText string          `json:"header_text"`
	FooterText string          `json:"footer_text"`
	Raw        json.RawMessage `json:"-"`
}

const (
	defaultHeaderText = "[Header Text]"
	defaultFooterText = "[Footer Text]"
)

// DefaultCompanyProfile is stored when the company fetch fails.
func DefaultCompanyProfile() CompanyProfile {
	raw, _ := json.Marshal(map[string]string{
		"header_text": defaultHeaderText,
		"footer_text": defaultFooterText,
	})
	return CompanyProfile{
		HeaderText: defaultHeaderText,
		FooterText: defaultFooterText,
		Raw:        raw,
	}
}

// ParseCompanyProfile decodes a persisted company_data document.
func ParseCompanyProfile(data []byte) (CompanyProfile, error) {
	var cp CompanyProfile
	if err := json.Unmarshal(data, &cp); err != nil {
		return CompanyProfile{}, err
	}
	cp.Raw = append(json.RawMessage(nil), data...)
	return cp, nil
}

// FormatDeadline encodes an idle deadline as unix milliseconds.
func FormatDeadline(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// ParseDeadline decodes an idle deadline stored as unix milliseconds.
func ParseDeadline(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
