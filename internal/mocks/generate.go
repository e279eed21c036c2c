// Package mocks provides gomock-generated mocks for the small collaborator
// ports. Stateful stores (sessions, flags, repositories) use the
// hand-written memory doubles in internal/mocks/memory instead; expectation
// scripting adds little over a real map there.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/wavechat/wavechat-api/internal/ports Mailer,Broadcaster,ChannelMessenger
