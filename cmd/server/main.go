package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dom/reader/docs"
	"github.com/dom/reader/internal/api"
	"github.com/dom/reader/internal/config"
	"github.com/dom/reader/internal/email"
	"github.com/dom/reader/internal/jobs"
	"github.com/dom/reader/internal/repository/postgres"
	"github.com/dom/reader/internal/service"
	"gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

// @title Reader API
// @version 1.0
// @description Personal reading log with book catalog search.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Println("Server stopped")
}

// run serves until ctx is cancelled, then drains in-flight requests, the
// purge job and queued emails, in that order.
func run(ctx context.Context, cfg *config.Config) error {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := postgres.NewConnection(cfg.DatabaseURL, logLevel)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	repos := postgres.NewRepositories(db)

	mailer := email.NewDispatcher(newSender(cfg.Email), cfg.Email.SendTimeout)
	defer mailer.Wait()

	services, err := service.NewServices(repos, cfg, mailer)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}

	scheduler := jobs.NewScheduler(repos.UserToken)
	if err := scheduler.Start(cfg.Codes.PurgeSchedule); err != nil {
		return err
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: api.NewRouter(services, cfg),
		// Book search may wait up to 30s on the catalog.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (%s)", cfg.Port, cfg.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

func newSender(cfg config.EmailConfig) email.Sender {
	switch cfg.Provider {
	case "mailjet":
		return email.NewMailjetSender(cfg.MailjetKey, cfg.MailjetSecret, cfg.MailjetURL, cfg.SendTimeout)
	default:
		log.Printf("Email provider %q: messages are logged, not delivered", cfg.Provider)
		return email.LogSender{}
	}
}
