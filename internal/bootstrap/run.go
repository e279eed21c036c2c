package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/wavechat/wavechat-api/config"
	"github.com/wavechat/wavechat-api/internal/adapters/irc"
	"golang.org/x/sync/errgroup"
)

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service
// fails, then stops the rest gracefully.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The bridge is wired before anything starts serving so BindBridge
	// cannot race with request handling.
	var bridge *irc.Bridge
	if enabled[config.ServiceModeBridge] {
		bridge, err = BuildBridge(BridgeConfig{
			IRC:     cfg.Config.IRC,
			Chats:   cfg.Services.Chats,
			Logger:  logger,
			Metrics: cfg.Services.Observability.MetricsSink,
		})
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if bridge != nil {
		g.Go(func() error {
			logger.Info("starting irc bridge", "server", cfg.Config.IRC.Server)
			if runErr := bridge.Run(gctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("irc bridge: %w", runErr)
			}
			return nil
		})
	}

	if enabled[config.ServiceModeHTTP] {
		server := StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		g.Go(func() error {
			<-gctx.Done()
			return ShutdownHTTPServer(context.Background(), server, logger)
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return waitErr
	}
	logger.Info("all services stopped")
	return nil
}
