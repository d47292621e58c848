// Command server runs the NutriWise API: reward evaluation, progress
// tracking, meal plans, food image classification and the admin dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutriwise/nutriwise-api/internal/api"
	"github.com/nutriwise/nutriwise-api/internal/api/admin"
	"github.com/nutriwise/nutriwise-api/internal/api/classify"
	complainthandler "github.com/nutriwise/nutriwise-api/internal/api/complaints"
	mealplanhandler "github.com/nutriwise/nutriwise-api/internal/api/mealplans"
	profilehandler "github.com/nutriwise/nutriwise-api/internal/api/profiles"
	progresshandler "github.com/nutriwise/nutriwise-api/internal/api/progress"
	rewardhandler "github.com/nutriwise/nutriwise-api/internal/api/rewards"
	userhandler "github.com/nutriwise/nutriwise-api/internal/api/users"
	"github.com/nutriwise/nutriwise-api/internal/cache"
	"github.com/nutriwise/nutriwise-api/internal/catalog"
	"github.com/nutriwise/nutriwise-api/internal/classifier"
	"github.com/nutriwise/nutriwise-api/internal/config"
	"github.com/nutriwise/nutriwise-api/internal/email"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/internal/service/analytics"
	"github.com/nutriwise/nutriwise-api/internal/service/auth"
	"github.com/nutriwise/nutriwise-api/internal/service/complaints"
	"github.com/nutriwise/nutriwise-api/internal/service/mealplan"
	"github.com/nutriwise/nutriwise-api/internal/service/profile"
	"github.com/nutriwise/nutriwise-api/internal/service/progress"
	"github.com/nutriwise/nutriwise-api/internal/service/rewards"
	"github.com/nutriwise/nutriwise-api/internal/service/scheduler"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (optional, env vars override)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting NutriWise API server")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.Postgres.MigrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	verifications := cache.NewVerificationStore(redisCache)

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	mailer := email.NewClient(&cfg.Email, log)

	cls, err := classifier.New(cfg.Classifier, log)
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	logRepo := repository.NewLogRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	mealPlanRepo := repository.NewMealPlanRepository(db)

	authService := auth.NewService(adminRepo, userRepo, verifications, mailer, &cfg.Auth, log)
	rewardService := rewards.NewService(userRepo, rewardRepo, logRepo, cat, log)
	progressService := progress.NewService(profileRepo, logRepo, cat, log)
	profileService := profile.NewService(profileRepo, cat, log)
	analyticsService := analytics.NewService(userRepo, profileRepo, mealPlanRepo, log)
	complaintService := complaints.NewService(complaintRepo, mailer, log)
	mealPlanService := mealplan.NewService(mealPlanRepo, log)

	sched := scheduler.NewService(cfg, rewardService, logRepo, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	router := api.New(cfg, authService, api.Handlers{
		Users:      userhandler.NewHandler(authService, log),
		Admin:      admin.NewHandler(authService, analyticsService, complaintService, log),
		Rewards:    rewardhandler.NewHandler(rewardService, log),
		Progress:   progresshandler.NewHandler(progressService, log),
		Profiles:   profilehandler.NewHandler(profileService, log),
		MealPlans:  mealplanhandler.NewHandler(mealPlanService, log),
		Complaints: complainthandler.NewHandler(complaintService, log),
		Classify:   classify.NewHandler(cls, log),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
