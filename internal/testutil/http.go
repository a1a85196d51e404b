package testutil

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TenantTemplate routes every tenant subdomain to the server returned by NewTenantServer.
const TenantTemplate = "http://{tenant}.portal.test/"

// NewTenantServer starts srv and returns a client that dials it for any host,
// so requests keep their tenant Host header.
func NewTenantServer(t testing.TB, handler http.Handler) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	addr := srv.Listener.Addr().String()
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}
	return srv, &http.Client{Transport: transport}
}
