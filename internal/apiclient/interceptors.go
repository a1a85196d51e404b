package apiclient

import (
	"context"
	"log/slog"
	"net/http"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// BearerInterceptor attaches the stored access token, read fresh for every request.
// Requests go out unauthenticated when no token is stored or the store fails.
func BearerInterceptor(store ports.CredentialStore, logger *slog.Logger) RequestInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(req *http.Request) error {
		token, ok, err := store.Get(req.Context(), domainsession.KeyAccessToken)
		if err != nil {
			logger.WarnContext(req.Context(), "read access token failed; sending request without credentials", "error", err)
			return nil
		}
		if !ok || token == "" {
			return nil
		}
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		return nil
	}
}

// RequestIDInterceptor sets X-Request-ID unless the caller already did.
func RequestIDInterceptor() RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, uuid.NewString())
		}
		return nil
	}
}

// UnauthorizedGuard terminates the session when a request is rejected with 401.
// The original error is returned unchanged. Anonymous requests are ignored.
func UnauthorizedGuard(terminator ports.SessionTerminator) ResponseInterceptor {
	return func(req *http.Request, resp *Response, err error) error {
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			return err
		}
		if IsAnonymous(req.Context()) {
			return err
		}
		// Logout must finish even when the caller's context is already canceled.
		terminator.Terminate(context.WithoutCancel(req.Context()), domainsession.ReasonUnauthorized)
		return err
	}
}
