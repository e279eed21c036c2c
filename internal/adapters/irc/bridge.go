package irc

// Package irc maintains the backend's single persistent IRC connection and
// relays traffic between IRC channels and the chat core.

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"strings"
	"time"

	ircevent "github.com/thoj/go-ircevent"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	"github.com/wavechat/wavechat-api/internal/observability/metrics"
	"github.com/wavechat/wavechat-api/internal/observability/statsd"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// InboundHandler receives messages observed on joined IRC channels. The
// bridge has already filtered its own traffic before calling it.
type InboundHandler interface {
	HandleInboundMessage(ctx context.Context, channel, nick, text string) error
}

// ChannelSource lists the channel names the bridge must occupy.
type ChannelSource interface {
	ListChannelNames(ctx context.Context) ([]string, error)
}

// connection is the subset of the IRC client the bridge drives after
// registration. Narrowed for testability.
type connection interface {
	Join(channel string)
	Part(channel string)
	Privmsg(target, message string)
	SendRawf(format string, a ...interface{})
	GetNick() string
}

// Config holds IRC connection settings.
type Config struct {
	Server         string
	Nick           string
	Username       string
	Password       string
	DefaultChannel string
	UseTLS         bool
	SkipTLSVerify  bool
	HandlerTimeout time.Duration
}

// Options configures a Bridge.
type Options struct {
	Config   Config
	Handler  InboundHandler
	Channels ChannelSource
}

// Bridge implements ports.ChannelMessenger over a single IRC connection.
// Outbound sends are fire-and-forget writes; IRC offers no delivery
// acknowledgment for PRIVMSG.
type Bridge struct {
	cfg      Config
	handler  InboundHandler
	channels ChannelSource
	logger   *slog.Logger
	sink     statsd.Sink

	irc  *ircevent.Connection
	conn connection

	// registrations is only touched from the irc event loop goroutine.
	registrations int
}

var _ ports.ChannelMessenger = (*Bridge)(nil)

// NewBridge wires a bridge. Logger and sink are optional.
func NewBridge(opts Options, logger *slog.Logger, sink statsd.Sink) (*Bridge, error) {
	if opts.Config.Server == "" {
		return nil, errors.New("irc: server address is required")
	}
	if opts.Config.Nick == "" {
		return nil, errors.New("irc: nick is required")
	}
	if opts.Handler == nil {
		return nil, errors.New("irc: inbound handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	username := opts.Config.Username
	if username == "" {
		username = opts.Config.Nick
	}
	if opts.Config.HandlerTimeout <= 0 {
		opts.Config.HandlerTimeout = 10 * time.Second
	}

	conn := ircevent.IRC(opts.Config.Nick, username)
	conn.Password = opts.Config.Password
	conn.UseTLS = opts.Config.UseTLS
	if opts.Config.UseTLS && opts.Config.SkipTLSVerify {
		conn.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // dev-only escape hatch
	}

	b := &Bridge{
		cfg:      opts.Config,
		handler:  opts.Handler,
		channels: opts.Channels,
		logger:   logger,
		sink:     sink,
		irc:      conn,
		conn:     conn,
	}

	conn.AddCallback("001", func(*ircevent.Event) { b.onRegistered() })
	conn.AddCallback("PRIVMSG", func(e *ircevent.Event) {
		b.onPrivmsg(e.Nick, firstArg(e.Arguments), e.Message())
	})
	return b, nil
}

// Run connects and processes IRC events until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.irc.Connect(b.cfg.Server); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.irc.Loop()
	}()

	select {
	case <-ctx.Done():
		b.irc.Quit()
		<-done
		return ctx.Err()
	case <-done:
		return errors.New("irc: connection loop terminated")
	}
}

// SendMessage delivers text to an IRC target.
func (b *Bridge) SendMessage(target, text string) {
	// IRC messages are single-line; split so multi-line chat text survives.
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			b.conn.Privmsg(target, line)
		}
	}
	metrics.EmitBridgeMessage(b.sink, metrics.BridgeMetric{
		Direction: metrics.DirectionOutbound,
		Result:    metrics.ResultSuccess,
	})
}

// JoinChannel joins an IRC channel. Names without the channel marker are
// refused; joining a bare nickname would silently target a user.
func (b *Bridge) JoinChannel(name string) {
	if !model.IsChannelName(name) {
		b.logger.Warn("irc join skipped, not a channel name", "name", name)
		return
	}
	b.conn.Join(name)
}

// LeaveChannel parts an IRC channel.
func (b *Bridge) LeaveChannel(name string) {
	b.conn.Part(name)
}

// SetTopic sets the topic of an IRC channel.
func (b *Bridge) SetTopic(name, topic string) {
	b.conn.SendRawf("TOPIC %s :%s", name, topic)
}

// onRegistered rejoins every known chat channel after (re)registration,
// so restarts and reconnects restore bridge presence.
func (b *Bridge) onRegistered() {
	b.registrations++
	if b.registrations > 1 {
		metrics.EmitBridgeReconnect(b.sink)
	}
	b.logger.Info("irc registered", "server", b.cfg.Server,
		"nick", b.conn.GetNick(), "registrations", b.registrations)
	if b.cfg.DefaultChannel != "" {
		b.conn.Join(b.cfg.DefaultChannel)
	}
	if b.channels == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.HandlerTimeout)
	defer cancel()

	names, err := b.channels.ListChannelNames(ctx)
	if err != nil {
		b.logger.Error("irc channel rejoin listing failed", "error", err)
		return
	}
	for _, name := range names {
		b.conn.Join(name)
	}
	b.logger.Info("irc channels joined", "count", len(names))
}

// onPrivmsg filters and forwards one inbound PRIVMSG.
func (b *Bridge) onPrivmsg(nick, target, text string) {
	start := time.Now()
	result, err := b.routeInbound(nick, target, text)

	metrics.EmitBridgeMessage(b.sink, metrics.BridgeMetric{
		Direction: metrics.DirectionInbound,
		Result:    result,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		b.logger.Error("irc inbound message rejected",
			"channel", target, "nick", nick, "error", err)
	}
}

func (b *Bridge) routeInbound(nick, target, text string) (string, error) {
	// Echoes of our own relayed messages must not loop back.
	if strings.EqualFold(nick, b.conn.GetNick()) {
		return metrics.ResultSkipped, nil
	}
	// Private messages to the bridge nick are not chat traffic.
	if !model.IsChannelName(target) {
		return metrics.ResultSkipped, nil
	}
	if strings.TrimSpace(text) == "" {
		return metrics.ResultSkipped, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.HandlerTimeout)
	defer cancel()

	if err := b.handler.HandleInboundMessage(ctx, target, nick, text); err != nil {
		return metrics.ResultError, err
	}
	return metrics.ResultSuccess, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
