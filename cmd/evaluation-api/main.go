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

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/evaluation-system/api/swagger"
	"github.com/noah-isme/evaluation-system/internal/app"
	"github.com/noah-isme/evaluation-system/internal/handler"
	"github.com/noah-isme/evaluation-system/pkg/config"
	"github.com/noah-isme/evaluation-system/pkg/jobs"
	"github.com/noah-isme/evaluation-system/pkg/logger"
)

// @title Evaluation System API
// @version 1.0.0
// @description Student evaluation, enrollment and grading service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialise application", zap.Error(err))
	}
	defer application.Close() //nolint:errcheck

	checks := make(map[string]handler.ReadinessCheck)
	for name, check := range application.Checks() {
		checks[name] = check
	}

	r := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Tokens:         application.Auth,
		Metrics:        application.Metrics,
		Logger:         logr,
	}, handler.Handlers{
		Auth:       handler.NewAuthHandler(application.Auth),
		Users:      handler.NewUserHandler(application.Users),
		Students:   handler.NewStudentHandler(application.Students),
		Teachers:   handler.NewTeacherHandler(application.Teachers),
		Subjects:   handler.NewSubjectHandler(application.Subjects),
		Enrollment: handler.NewEnrollmentHandler(application.Enrollments),
		Records:    handler.NewRecordHandler(application.Records),
		Grades:     handler.NewGradeHandler(application.Grades),
		Metrics:    handler.NewMetricsHandler(application.Metrics, checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	scheduler := jobs.NewScheduler(jobs.SchedulerConfig{MaxRetries: 2, RetryDelay: 5 * time.Second, Logger: logr})
	if err := scheduler.Every("prune-exports", cfg.Exports.SweepInterval, func(context.Context) error {
		removed, err := application.Records.Cleanup(0)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logr.Info("expired exports removed", zap.Int("count", len(removed)))
		}
		return nil
	}); err != nil {
		logr.Fatal("failed to schedule export cleanup", zap.Error(err))
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", application.Backend.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
