//go:build tools
// +build tools

// Package tools documents development tooling. These are installed globally
// with `go install` rather than tracked in go.mod: they support the dev loop,
// not the build.
package tools

// Air - live reload while working on handlers
//   go install github.com/air-verse/air@v1.63.0 (pinned 2025-08-01)
//
// golangci-lint - lint aggregator used in CI
//   go install github.com/golangci/golangci-lint/cmd/golangci-lint@v1.64.8
