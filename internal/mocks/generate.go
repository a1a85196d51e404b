// Package mocks provides mock implementations of the session ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces in internal/ports.
// Hand-written doubles that are simpler to drive than expectations live in the session subpackage.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockCredentialStore(ctrl)
//	store.EXPECT().Get(gomock.Any(), "access_token").Return("A", true, nil)
package mocks

// Generate mocks for the session ports:
// CredentialStore (Get, Set, Clear), Navigator (Navigate), SessionTerminator (Terminate),
// TokenDecoder (Expiry), SessionMetrics (LoginAttempt, Terminated, TokenDecodeFailure, CompanyFallback)
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports CredentialStore,Navigator,SessionTerminator,TokenDecoder,SessionMetrics
