package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/drithh/setalip-mono-sub003/internal/config"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/scheduler"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithEnv(cfg.Env)

	jobs, err := scheduler.Schedule(cfg.CronSchedule, cfg.Location(), scheduler.NewTrigger(cfg.CronTargetURL, cfg.CronSecret))
	if err != nil {
		logger.Fatalf("Failed to schedule daily job: %v", err)
	}
	jobs.Start()
	logger.Info("Cron worker started", "schedule", cfg.CronSchedule, "target", cfg.CronTargetURL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Infof("Received signal: %v", sig)

	<-jobs.Stop().Done()
	logger.Info("Cron worker stopped")
}
