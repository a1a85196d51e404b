//go:build tools

// Package tools lists the code generators this module relies on.
package tools

// mockgen regenerates internal/mocks from the ports interfaces (see internal/mocks/generate.go).
// The directives pin go.uber.org/mock/mockgen@v0.6.0, matching the gomock runtime in go.mod.
// For faster local runs:
//
//	go install go.uber.org/mock/mockgen@v0.6.0
