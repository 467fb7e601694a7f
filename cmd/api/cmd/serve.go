package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/background"
	"github.com/BradenHooton/teamup-users/internal/handlers"
	middlewareCustom "github.com/BradenHooton/teamup-users/internal/middleware"
	"github.com/BradenHooton/teamup-users/internal/notify"
	"github.com/BradenHooton/teamup-users/internal/routes"
	"github.com/BradenHooton/teamup-users/internal/services"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
	pkglogger "github.com/BradenHooton/teamup-users/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store", cfg.Store.Driver),
		slog.Bool("sso", cfg.SSO.Enabled()),
	)

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare user store: %w", err)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Notifications
	publishers, err := buildPublishers(ctx)
	if err != nil {
		return err
	}
	emitter := notify.NewEmitter(logger, cfg.Notify.PublishTimeout, publishers...)
	dispatcher := background.NewDispatcher(emitter, logger, cfg.Notify.QueueSize, cfg.Notify.Workers)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Auth
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:    cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs:  cfg.Auth.TimingDelayRandomMs,
		DelayOnSuccess: cfg.Auth.TimingDelayOnSuccess,
	})
	cookies := auth.CookieConfig{
		Domain:   cfg.SSO.CookieDomain,
		Secure:   cfg.SSO.CookieSecure,
		SameSite: cfg.SSO.CookieSameSite,
	}
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Services
	userService := services.NewUserService(store.repo, dispatcher, logger, auditLogger)
	authService := services.NewAuthService(store.repo, tokenManager, cfg.Auth.AccessTokenExpiry, timingDelay, logger, auditLogger)

	deps := routes.Dependencies{
		HealthHandler: handlers.NewHealthHandler(store.health, logger),
		UserHandler:   handlers.NewUserHandler(userService),
		AuthHandler:   handlers.NewAuthHandler(authService, ipConfig, cookies, auditLogger),
		Tokens:        tokenManager,
		APIKey:        cfg.Auth.APIKey,
		LoginLimit: middlewareCustom.RateLimitConfig{
			Requests: cfg.Auth.LoginRateLimit,
			Window:   cfg.Auth.LoginRateWindow,
		},
	}

	if cfg.SSO.Enabled() {
		provider, err := auth.NewGoogleProvider(ctx, auth.GoogleProviderConfig{
			Issuer:       cfg.SSO.Issuer,
			ClientID:     cfg.SSO.ClientID,
			ClientSecret: cfg.SSO.ClientSecret,
			RedirectURL:  cfg.SSO.RedirectURL,
			Scopes:       cfg.SSO.Scopes,
			HashKey:      []byte(cfg.SSO.CookieHashKey),
			EncryptKey:   []byte(cfg.SSO.CookieEncryptKey),
			Secure:       cfg.SSO.CookieSecure,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize google sso: %w", err)
		}

		ssoService := services.NewSSOService(store.repo, tokenManager, dispatcher, cfg.SSO.TokenTTL, cfg.SSO.MaxUsernameTries, logger, auditLogger)
		deps.SSOHandler = handlers.NewSSOHandler(provider, ssoService, tokenManager, cfg.SSO.TokenTTL, cfg.SSO.PostLoginPath, cookies, logger)
	}

	if cfg.Auth.APIKey == "" {
		logger.Warn("API_KEY not set, mutating /users routes are unauthenticated")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, deps)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// buildPublishers returns the notification targets configured in the
// environment. The log publisher is always present.
func buildPublishers(ctx context.Context) ([]notify.Publisher, error) {
	publishers := []notify.Publisher{notify.NewLogPublisher(logger)}

	wantSNS := cfg.Notify.SNSTopicARN != ""
	wantSES := cfg.Notify.EmailFrom != "" && cfg.Notify.EmailTo != ""
	if !wantSNS && !wantSES {
		return publishers, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Notify.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	if wantSNS {
		publishers = append(publishers, notify.NewSNSPublisher(awsCfg, cfg.Notify.SNSTopicARN, logger))
	}
	if wantSES {
		publishers = append(publishers, notify.NewSESPublisher(awsCfg, cfg.Notify.EmailFrom, cfg.Notify.EmailTo, logger))
	}
	return publishers, nil
}
