package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"doctor-appointment-server/internal/cache"
	"doctor-appointment-server/internal/config"
	"doctor-appointment-server/internal/handlers"
	"doctor-appointment-server/internal/logging"
	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/realtime"
	"doctor-appointment-server/internal/repository"
	"doctor-appointment-server/internal/routes"
	"doctor-appointment-server/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "doctor-appointment-server",
		Short: "Doctor appointment booking API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			return runServer(cfg, logger)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := models.OpenDB(models.DatabaseConfig{DSN: cfg.Database.DSN, Verbose: cfg.IsDev()})
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info().Msg("schema is up to date")
			return nil
		},
	}
}

// bootstrap loads .env, the configuration and the logger shared by every command.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, zerolog.Nop(), fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Environment, cfg.LogLevel), nil
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN, Verbose: cfg.IsDev()})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	users := repository.NewUserRepository(db)
	appointments := repository.NewAppointmentRepository(db)
	notifications := repository.NewNotificationRepository(db)

	var counter services.UnreadCounter
	if cfg.Redis.Addr != "" {
		rc := cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, unread counts served from the database")
			_ = rc.Close()
		} else {
			defer rc.Close()
			counter = cache.NewUnreadCounter(rc)
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("unread counter cache enabled")
		}
	}

	hub := realtime.NewHub(logger)

	notificationSvc := services.NewNotificationService(notifications, counter, hub, logger)
	appointmentSvc := services.NewAppointmentService(appointments, users, notificationSvc, logger)
	querySvc := services.NewQueryService(appointments, users)
	authSvc := services.NewAuthService(users, cfg.JWTSecret, time.Duration(cfg.JWTExpirationMinutes)*time.Minute, logger)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authSvc, logger),
		Users:         handlers.NewUserHandler(authSvc, logger),
		Appointments:  handlers.NewAppointmentHandler(appointmentSvc, querySvc, logger),
		Notifications: handlers.NewNotificationHandler(notificationSvc, logger),
		Realtime:      realtime.NewHandler(hub, notificationSvc, cfg.JWTSecret, cfg.Origin, logger),
	}, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
