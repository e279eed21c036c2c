//go:build tools
// +build tools

// Package tools pins the development tooling used while working on the
// wavechat backend. Nothing here is a runtime dependency; install the
// tools globally with `go install`.
package tools

// Air reloads the server on save, which matters here because a restart
// re-registers the IRC bridge and rejoins every chat channel.
//   Install: go install github.com/air-verse/air@v1.63.0
//   Pinned:  v1.63.0 (2025-08-14)
//   Docs:    https://github.com/air-verse/air
