package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/wavechat/wavechat-api/config"
	"github.com/wavechat/wavechat-api/internal/adapters/irc"
	"github.com/wavechat/wavechat-api/internal/observability/statsd"
	"github.com/wavechat/wavechat-api/internal/service"
)

// BridgeConfig contains configuration for the IRC bridge.
type BridgeConfig struct {
	IRC     config.IRCConfig
	Chats   *service.ChatService
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// BuildBridge constructs the IRC bridge with the chat service as both its
// inbound sink and channel source, and binds it back into the chat service
// so outbound sends reach the wire.
func BuildBridge(cfg BridgeConfig) (*irc.Bridge, error) {
	bridge, err := irc.NewBridge(irc.Options{
		Config: irc.Config{
			Server:         cfg.IRC.Server,
			Nick:           cfg.IRC.Nick,
			Username:       cfg.IRC.Username,
			Password:       cfg.IRC.Password,
			DefaultChannel: cfg.IRC.DefaultChannel,
			UseTLS:         cfg.IRC.UseTLS,
			SkipTLSVerify:  cfg.IRC.SkipTLSVerify,
			HandlerTimeout: cfg.IRC.HandlerTimeout,
		},
		Handler:  cfg.Chats,
		Channels: cfg.Chats,
	}, cfg.Logger, cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("create irc bridge: %w", err)
	}

	cfg.Chats.BindBridge(bridge)
	return bridge, nil
}
