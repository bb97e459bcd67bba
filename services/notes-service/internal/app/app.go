// Package app wires the notes service together and runs its HTTP and gRPC servers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/config"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/handler"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/render"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/router"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
	"github.com/vasapolrittideah/notes-api/shared/auth"
	"github.com/vasapolrittideah/notes-api/shared/discovery"
	"github.com/vasapolrittideah/notes-api/shared/interceptor"
	"github.com/vasapolrittideah/notes-api/shared/mailer"
	"github.com/vasapolrittideah/notes-api/shared/middleware"
	"github.com/vasapolrittideah/notes-api/shared/provider"
	"github.com/vasapolrittideah/notes-api/shared/ratelimit"
	"github.com/vasapolrittideah/notes-api/shared/security"
	"github.com/vasapolrittideah/notes-api/shared/utilities"
	"github.com/vasapolrittideah/notes-api/shared/validation"
)

const (
	serviceName        = "notes-service"
	serviceDescription = "Notes API with per-user encrypted notes"
)

type App struct {
	cfg    *config.Config
	logger *zerolog.Logger

	mongo    *mongo.Client
	redis    *redis.Client
	http     *http.Server
	grpc     *grpc.Server
	health   *health.Server
	registry *discovery.ConsulRegistry
}

// ConnectMongo opens a pooled client and verifies the primary is reachable.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// New connects to the backing services and builds both servers.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	client, db, err := ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	a.mongo = client

	cipher, err := security.NewFieldCipher(cfg.Encryption.Secret, cfg.Encryption.Salt)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	jwtAuth, err := auth.NewJWTAuthenticator(cfg.JWT.Secret, cfg.JWT.Audience, cfg.JWT.Issuer)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	validator, err := validation.New()
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	loginLimiter, sendLimiter, verifyLimiter := ratelimit.Noop(), ratelimit.Noop(), ratelimit.Noop()
	if cfg.RedisURL != "" {
		a.redis, err = ratelimit.NewRedisClient(cfg.RedisURL)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("failed to configure redis: %w", err)
		}
		loginLimiter = ratelimit.NewRedisLimiter(a.redis, ratelimit.LoginPolicy)
		sendLimiter = ratelimit.NewRedisLimiter(a.redis, ratelimit.SendCodePolicy)
		verifyLimiter = ratelimit.NewRedisLimiter(a.redis, ratelimit.VerifyCodePolicy)
	} else {
		logger.Warn().Msg("REDIS_URL not set, attempt limiting disabled")
	}

	var google usecase.GoogleTokenVerifier
	if cfg.GoogleClientID != "" {
		google = provider.NewGoogleOAuthProvider(cfg.GoogleClientID)
	}

	userRepo := repository.NewUserMongoRepository(ctx, logger, db)
	noteRepo := repository.NewNoteMongoRepository(ctx, logger, db)
	codeRepo := repository.NewVerificationCodeMongoRepository(ctx, logger, db)
	settingRepo := repository.NewSettingMongoRepository(ctx, logger, db)

	settingUsecase := usecase.NewSettingUsecase(settingRepo, cipher)
	mail := mailer.NewMailer(cfg.SMTP, settingUsecase, logger)

	gate := auth.NewGate(jwtAuth, userRepo, logger)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	h := handler.New(handler.Dependencies{
		Auth: usecase.NewAuthUsecase(userRepo, jwtAuth, google, loginLimiter, cfg.JWT.TTL, logger),
		PasswordReset: usecase.NewPasswordResetUsecase(
			userRepo, codeRepo, mail, sendLimiter, verifyLimiter, logger),
		Profile:   usecase.NewProfileUsecase(userRepo),
		Notes:     usecase.NewNoteUsecase(noteRepo, cipher, render.NewMarkdown()),
		Gate:      gate,
		Validator: validator,
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Info: handler.ServiceInfo{
			Name:        serviceName,
			Version:     cfg.Version,
			Description: serviceDescription,
			Environment: cfg.Environment,
		},
		Logger: logger,
	})

	a.http = &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.New(h, gate, logger, router.Options{
			CORSOrigins:    cfg.CORSOrigins,
			RequestTimeout: cfg.RequestTimeout,
			TrustedProxies: trustedProxies,
		}),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	a.grpc, a.health = newGRPCServer(cfg.Consul, gate)

	if cfg.Consul.Addr != "" {
		a.registry, err = discovery.NewConsulRegistry(cfg.Consul.Addr, logger)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
	}

	return a, nil
}

// Run serves until ctx is cancelled or a server fails, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.GRPCAddr, err)
	}

	errCh := make(chan error, 2)

	go func() {
		a.logger.Info().Str("addr", a.cfg.GRPCAddr).Msg("grpc server listening")
		if err := a.grpc.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.registry != nil {
		if err := a.register(listener.Addr()); err != nil {
			a.logger.Error().Err(err).Msg("consul registration failed")
		}
	}

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
	case err = <-errCh:
		a.logger.Error().Err(err).Msg("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.shutdown(shutdownCtx)
	return err
}

// newGRPCServer reports health under the name Consul checks.
func newGRPCServer(cfg config.ConsulConfig, gate *auth.Gate) (*grpc.Server, *health.Server) {
	server := grpc.NewServer(grpc.UnaryInterceptor(interceptor.NewJWTInterceptor(gate, utilities.HealthCheckMethods)))
	return server, utilities.RegisterHealthServer(server, cfg.ServiceName)
}

func (a *App) register(addr net.Addr) error {
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	host := a.cfg.Consul.ServiceAddress
	if host == "" {
		if host, err = os.Hostname(); err != nil {
			return err
		}
	}

	return a.registry.Register(discovery.Registration{
		Name:    a.cfg.Consul.ServiceName,
		Address: host,
		Port:    port,
	})
}

func (a *App) shutdown(ctx context.Context) {
	if a.registry != nil {
		a.registry.Deregister()
	}
	utilities.MarkNotServing(a.health)

	if err := a.http.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("http server shutdown failed")
	}

	stopped := make(chan struct{})
	go func() {
		a.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		a.grpc.Stop()
	}

	a.close(ctx)
}

func (a *App) close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("failed to disconnect from mongodb")
		}
	}
}
