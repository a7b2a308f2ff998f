package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/api"
	"github.com/aschalew-star/tenderalert/internal/app"
	iauth "github.com/aschalew-star/tenderalert/internal/auth"
	"github.com/aschalew-star/tenderalert/internal/database"
	"github.com/aschalew-star/tenderalert/internal/schedule"
	"github.com/aschalew-star/tenderalert/internal/services"
	"github.com/aschalew-star/tenderalert/pkg/logger"
	"github.com/aschalew-star/tenderalert/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tenderalert-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	mailer, err := buildMailer(cfg, log)
	if err != nil {
		return err
	}

	jwtService, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	dispatcher, err := services.NewDispatcherService(db, mailer,
		services.WithMaxRetries(cfg.Notify.MaxRetries),
		services.WithRetryBackoff(cfg.Notify.RetryBackoff))
	if err != nil {
		return fmt.Errorf("initialise dispatcher: %w", err)
	}

	pending, err := services.NewPendingService(db, dispatcher)
	if err != nil {
		return fmt.Errorf("initialise pending queue: %w", err)
	}

	matcher, err := services.NewMatcherService(db, dispatcher, pending,
		services.WithLocation(cfg.Notify.Location()))
	if err != nil {
		return fmt.Errorf("initialise matcher: %w", err)
	}

	expiry, err := services.NewExpiryService(db,
		services.WithExpiryBatchSize(cfg.Notify.ExpiryBatchSize))
	if err != nil {
		return fmt.Errorf("initialise expiry sweep: %w", err)
	}

	tenders, err := services.NewTenderService(db)
	if err != nil {
		return fmt.Errorf("initialise tender service: %w", err)
	}

	notifications, err := services.NewNotificationService(db)
	if err != nil {
		return fmt.Errorf("initialise notification service: %w", err)
	}

	registration, err := services.NewRegistrationService(db, dispatcher)
	if err != nil {
		return fmt.Errorf("initialise registration service: %w", err)
	}

	scheduler := schedule.New(pending, expiry,
		schedule.WithPendingSchedule(cfg.Notify.PendingSchedule),
		schedule.WithExpirySchedule(cfg.Notify.ExpirySchedule))
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start background sweeps: %w", err)
	}
	defer func() {
		stopCtx := scheduler.Stop()
		if err := scheduler.RunOnce(stopCtx); err != nil {
			log.Warn("shutdown sweep failed", zap.Error(err))
		}
	}()

	router, err := api.NewRouter(db, jwtService, cfg, api.Services{
		Tenders:       tenders,
		Matcher:       matcher,
		Notifications: notifications,
		Registration:  registration,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.Config()
	dbCfg.Driver = strings.ToLower(strings.TrimSpace(dbCfg.Driver))
	if dbCfg.Driver == "" {
		dbCfg.Driver = "sqlite"
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.MigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func buildMailer(cfg *app.Config, log *zap.Logger) (mail.Mailer, error) {
	if !cfg.Email.SMTP.Enabled {
		log.Warn("smtp disabled; notifications will be recorded without email delivery")
		return mail.Discard{}, nil
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise smtp mailer: %w", err)
	}
	return mailer, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
