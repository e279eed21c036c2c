package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/wavechat/wavechat-api/config"
	"github.com/wavechat/wavechat-api/internal/adapters/mail"
	"github.com/wavechat/wavechat-api/internal/adapters/oidc"
	redisadapter "github.com/wavechat/wavechat-api/internal/adapters/redis"
	"github.com/wavechat/wavechat-api/internal/adapters/ws"
	"github.com/wavechat/wavechat-api/internal/data"
	"github.com/wavechat/wavechat-api/internal/data/cryptoutil"
	"github.com/wavechat/wavechat-api/internal/observability/statsd"
	"github.com/wavechat/wavechat-api/internal/ports"
	"github.com/wavechat/wavechat-api/internal/service"
	gomail "github.com/wneessen/go-mail"
)

// ServiceDeps groups external dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger

	// Mailer overrides the SMTP mailer when set (tests, local runs).
	Mailer ports.Mailer
}

// ObservabilityContainer carries process-wide observability handles.
type ObservabilityContainer struct {
	MetricsSink statsd.Sink
}

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Auth         *service.AuthService
	Tokens       *service.TokenService
	Verification *service.VerificationService
	Recovery     *service.PasswordRecoveryService
	Chats        *service.ChatService
	Users        *service.UserService
	Refresh      *service.RefreshService
	Hub          *ws.Hub

	Observability ObservabilityContainer
}

// repositories groups the data-layer constructs shared by the services.
type repositories struct {
	Users    *data.UserRepo
	Tokens   *data.TokenRepo
	Chats    *data.ChatRepo
	Messages *data.MessageRepo
	Cache    *data.RedisCacheRepo
	Sessions *redisadapter.SessionStore
}

func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) repositories {
	return repositories{
		Users:    data.NewUserRepo(db),
		Tokens:   data.NewTokenRepo(db),
		Chats:    data.NewChatRepo(db),
		Messages: data.NewMessageRepo(db),
		Cache:    data.NewRedisCacheRepo(redisClient),
		Sessions: redisadapter.NewSessionStore(redisClient),
	}
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) (ObservabilityContainer, error) {
	sink, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return ObservabilityContainer{}, fmt.Errorf("statsd client: %w", err)
	}
	return ObservabilityContainer{MetricsSink: sink}, nil
}

//nolint:ireturn // ports.Mailer lets tests substitute a recording double.
func buildMailer(cfg *config.AppConfig, logger *slog.Logger) (ports.Mailer, error) {
	linkBase := cfg.Mail.LinkBaseURL
	if linkBase == "" {
		linkBase = cfg.HTTP.BaseURL
	}
	return mail.NewMailer(mail.Config{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.Username,
		Password:  cfg.Mail.Password,
		From:      cfg.Mail.From,
		BaseURL:   linkBase,
		TLSPolicy: gomail.TLSOpportunistic,
	}, logger)
}

//nolint:ireturn // ports.AuthProvider keeps OAuth optional at the wiring level.
func buildAuthProvider(cfg *config.AppConfig) (ports.AuthProvider, error) {
	if !cfg.Auth.OAuth.Enabled {
		return nil, nil //nolint:nilnil // absent provider simply disables OAuth routes
	}
	provider, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     cfg.Auth.OAuth.ClientID,
		ClientSecret: cfg.Auth.OAuth.ClientSecret,
		RedirectURL:  cfg.HTTP.OAuthCallbackURL(),
		Scope:        cfg.Auth.OAuth.Scope,
		IssuerURL:    cfg.Auth.OAuth.IssuerURL,
	})
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}
	return provider, nil
}

// NewServices wires repositories, adapters, and application services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, fmt.Errorf("service deps and config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	observability, err := buildObservability(logger, cfg.Observability)
	if err != nil {
		return ServiceContainer{}, err
	}

	mailer := deps.Mailer
	if mailer == nil {
		mailer, err = buildMailer(cfg, logger)
		if err != nil {
			return ServiceContainer{}, err
		}
	}

	provider, err := buildAuthProvider(cfg)
	if err != nil {
		return ServiceContainer{}, err
	}

	repos := buildRepositories(deps.DB, deps.RedisClient)
	hasher := cryptoutil.NewArgon2Hasher(cryptoutil.DefaultArgon2Params())
	hub := ws.NewHub(logger)

	tokens := service.NewTokenService(service.TokenServiceOptions{
		Tokens: repos.Tokens,
		Users:  repos.Users,
		Mail:   mailer,
	}, logger)

	refresh := service.NewRefreshService(service.RefreshServiceOptions{
		Flags:    repos.Cache,
		Users:    repos.Users,
		Sessions: repos.Sessions,
	}, logger, observability.MetricsSink)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Users:           repos.Users,
		Sessions:        repos.Sessions,
		Tokens:          tokens,
		Hasher:          hasher,
		Provider:        provider,
		SessionLifetime: cfg.Auth.SessionLifetime,
	}, logger)

	return ServiceContainer{
		Auth:   auth,
		Tokens: tokens,
		Verification: service.NewVerificationService(service.VerificationServiceOptions{
			Users:  repos.Users,
			Tokens: tokens,
			Auth:   auth,
		}, logger),
		Recovery: service.NewPasswordRecoveryService(service.PasswordRecoveryServiceOptions{
			Users:  repos.Users,
			Tokens: tokens,
			Hasher: hasher,
		}, logger),
		Chats: service.NewChatService(service.ChatServiceOptions{
			Chats:    repos.Chats,
			Messages: repos.Messages,
			Users:    repos.Users,
			Push:     hub,
		}, logger),
		Users: service.NewUserService(service.UserServiceOptions{
			Users:   repos.Users,
			Refresh: refresh,
			Hasher:  hasher,
		}, logger),
		Refresh:       refresh,
		Hub:           hub,
		Observability: observability,
	}, nil
}
