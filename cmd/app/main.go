package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drithh/setalip-mono-sub003/internal/agenda"
	"github.com/drithh/setalip-mono-sub003/internal/auth"
	"github.com/drithh/setalip-mono-sub003/internal/booking"
	"github.com/drithh/setalip-mono-sub003/internal/class"
	"github.com/drithh/setalip-mono-sub003/internal/config"
	"github.com/drithh/setalip-mono-sub003/internal/credit"
	"github.com/drithh/setalip-mono-sub003/internal/db"
	"github.com/drithh/setalip-mono-sub003/internal/email"
	"github.com/drithh/setalip-mono-sub003/internal/events"
	"github.com/drithh/setalip-mono-sub003/internal/location"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/loyalty"
	"github.com/drithh/setalip-mono-sub003/internal/packages"
	"github.com/drithh/setalip-mono-sub003/internal/report"
	"github.com/drithh/setalip-mono-sub003/internal/server"
	"github.com/drithh/setalip-mono-sub003/internal/upload"
	"github.com/drithh/setalip-mono-sub003/internal/user"
	"github.com/drithh/setalip-mono-sub003/internal/websetting"
)

// @title Setalip API
// @version 1.0
// @description Booking, package and loyalty API for Setalip pilates studios.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey CronAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithEnv(cfg.Env)
	logger.Info("Starting Setalip application", "env", cfg.Env, "timezone", cfg.Timezone)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}

	publisher, err := events.New(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("Failed to connect to rabbitmq: %v", err)
	}
	defer publisher.Close()

	loc := cfg.Location()
	tx := db.NewTransactor(database)

	sender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom, cfg.EmailFromName)
	mailer := email.New(rdb, sender, loc, cfg.AppURL)

	sessions := auth.NewRedisSessionStore(rdb)
	userService := user.NewService(user.NewRepository(database), sessions, user.NewRedisVerificationStore(rdb), mailer, cfg.JWTSecret)

	creditService := credit.NewService(credit.NewRepository(database), tx)
	loyaltyService := loyalty.NewService(loyalty.NewRepository(database), tx)
	agendaService := agenda.NewService(agenda.NewRepository(database), tx, loc)
	bookingService := booking.NewService(booking.NewRepository(database), tx, creditService, loyaltyService, mailer, publisher, cfg.CancelNotice())
	packageService := packages.NewService(packages.NewRepository(database), tx, creditService, loyaltyService, mailer, publisher, cfg.LoyaltyPointValue)

	store, err := upload.NewStore(cfg.UploadDir, cfg.PublicURL)
	if err != nil {
		logger.Fatalf("Failed to prepare upload dir: %v", err)
	}

	srv := server.New(cfg, server.Handlers{
		User:     user.NewHandler(userService),
		Location: location.NewHandler(location.NewService(location.NewRepository(database))),
		Class:    class.NewHandler(class.NewService(class.NewRepository(database))),
		Agenda:   agenda.NewHandler(agendaService, cfg.GenerateWeeksAhead),
		Booking:  booking.NewHandler(bookingService),
		Packages: packages.NewHandler(packageService),
		Credit:   credit.NewHandler(creditService),
		Loyalty:  loyalty.NewHandler(loyaltyService),
		Content:  websetting.NewHandler(websetting.NewService(websetting.NewRepository(database), rdb)),
		Report:   report.NewHandler(report.NewService(report.NewRepository(database), loc)),
		Upload:   upload.NewHandler(store),
		Daily:    server.NewDailyHandler(agendaService, packageService, cfg.GenerateWeeksAhead),
	}, server.Gates{Sessions: sessions, Verifier: userService})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mailer.Start(ctx)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
