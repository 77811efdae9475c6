package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/repository"
	"github.com/noah-isme/evaluation-system/internal/service"
	"github.com/noah-isme/evaluation-system/pkg/cache"
	"github.com/noah-isme/evaluation-system/pkg/config"
	"github.com/noah-isme/evaluation-system/pkg/storage"
)

// App holds the opened infrastructure and the services built on it.
type App struct {
	Backend *repository.Backend
	Cache   *repository.CacheRepository
	Exports *storage.LocalStorage

	Metrics     *service.MetricsService
	CacheSvc    *service.CacheService
	Auth        *service.AuthService
	Users       *service.UserService
	Students    *service.StudentService
	Teachers    *service.TeacherService
	Subjects    *service.SubjectService
	Enrollments *service.EnrollmentService
	Grades      *service.GradeService
	Records     *service.RecordService
}

// New opens the record store, the optional Redis cache and the export directory and
// wires every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	exports, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("open export storage: %w", err)
	}

	a := &App{Backend: backend, Exports: exports, Metrics: service.NewMetricsService()}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable; enrollment options will not be cached", zap.Error(err))
		} else {
			a.Cache = repository.NewCacheRepository(client, logger)
			cacheRepo = a.Cache
		}
	}
	a.CacheSvc = service.NewCacheService(cacheRepo, a.Metrics, cfg.Cache.TTL, logger, cacheRepo != nil)

	validate := validator.New()
	set := backend.Set

	a.Auth = service.NewAuthService(set.Users, set.Students, set.Teachers, validate, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	a.Users = service.NewUserService(set.Users, validate, logger)
	a.Students = service.NewStudentService(set.Students, set.Enrollments, set.Users, set.Subjects, a.CacheSvc, validate, logger)
	a.Teachers = service.NewTeacherService(set.Teachers, set.Users, set.Subjects, validate, logger)
	a.Subjects = service.NewSubjectService(set.Subjects, a.CacheSvc, validate, logger)
	a.Enrollments = service.NewEnrollmentService(set.Students, set.Enrollments, set.Subjects, a.CacheSvc, a.Metrics, validate, logger,
		service.EnrollmentConfig{MaxUnits: cfg.Enrollment.MaxUnits})
	a.Grades = service.NewGradeService(set.Enrollments, set.Students, set.Teachers, set.Subjects, a.CacheSvc, a.Metrics, nil, validate, logger)
	a.Records = service.NewRecordService(set.Students, set.Enrollments, exports,
		service.RecordConfig{TotalUnits: cfg.Enrollment.TotalUnitsRequired, ResultTTL: cfg.Exports.ResultTTL},
		logger, nil, nil, nil)

	return a, nil
}

// Checks returns the readiness probes of the opened dependencies keyed by name.
func (a *App) Checks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{"store": a.Backend.Ping}
	if a.Cache != nil {
		checks["cache"] = a.Cache.Ping
	}
	return checks
}

// Close releases the store and cache connections.
func (a *App) Close() error {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	return a.Backend.Close()
}
