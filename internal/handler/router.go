package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/middleware"
	"github.com/noah-isme/evaluation-system/internal/models"
	"github.com/noah-isme/evaluation-system/internal/service"
	"github.com/noah-isme/evaluation-system/pkg/logger"
	corsmiddleware "github.com/noah-isme/evaluation-system/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/evaluation-system/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Students   *StudentHandler
	Teachers   *TeacherHandler
	Subjects   *SubjectHandler
	Enrollment *EnrollmentHandler
	Records    *RecordHandler
	Grades     *GradeHandler
	Metrics    *MetricsHandler
}

// RouterConfig carries the HTTP surface settings.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	Tokens         middleware.TokenValidator
	Metrics        *service.MetricsService
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with the full API surface mounted under the prefix.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	admin := string(models.RoleAdmin)
	teacher := string(models.RoleTeacher)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(cfg.Tokens))

	secured.GET("/auth/me", h.Auth.Me)
	secured.POST("/auth/change-password", h.Auth.ChangePassword)
	secured.GET("/metrics/summary", middleware.RBAC(admin), h.Metrics.Summary)

	users := secured.Group("/users", middleware.RBAC(admin))
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.DELETE("/:username", h.Users.Delete)

	students := secured.Group("/students")
	students.GET("", middleware.RBAC(admin, teacher), h.Students.List)
	students.POST("", middleware.RBAC(admin), h.Students.Create)
	students.GET("/:id", middleware.RBAC(admin, teacher, middleware.Self), h.Students.Get)
	students.PUT("/:id", middleware.RBAC(admin), h.Students.Update)
	students.DELETE("/:id", middleware.RBAC(admin), h.Students.Delete)
	students.PATCH("/:id/profile", middleware.RBAC(admin, middleware.Self), h.Students.UpdateProfile)
	students.GET("/:id/history", middleware.RBAC(admin, teacher, middleware.Self), h.Enrollment.History)
	students.GET("/:id/next-term", middleware.RBAC(admin, middleware.Self), h.Enrollment.NextTerm)
	students.GET("/:id/enrollment-options", middleware.RBAC(admin, middleware.Self), h.Enrollment.Options)
	students.POST("/:id/enrollments", middleware.RBAC(admin, middleware.Self), h.Enrollment.Commit)
	students.GET("/:id/record", middleware.RBAC(admin, teacher, middleware.Self), h.Records.Get)
	students.GET("/:id/record/export", middleware.RBAC(admin, middleware.Self), h.Records.Export)
	students.PUT("/:id/grades/:code", middleware.RBAC(admin, teacher), h.Grades.Update)

	teachers := secured.Group("/teachers")
	teachers.GET("", middleware.RBAC(admin), h.Teachers.List)
	teachers.POST("", middleware.RBAC(admin), h.Teachers.Create)
	teachers.GET("/:id", middleware.RBAC(admin, middleware.Self), h.Teachers.Get)
	teachers.PUT("/:id", middleware.RBAC(admin), h.Teachers.Update)
	teachers.DELETE("/:id", middleware.RBAC(admin), h.Teachers.Delete)
	teachers.PATCH("/:id/profile", middleware.RBAC(admin, middleware.Self), h.Teachers.UpdateProfile)

	subjects := secured.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.GET("/:code", h.Subjects.Get)
	subjects.POST("", middleware.RBAC(admin), h.Subjects.Create)
	subjects.POST("/import", middleware.RBAC(admin), h.Subjects.Import)
	subjects.PUT("/:code", middleware.RBAC(admin), h.Subjects.Update)
	subjects.DELETE("/:code", middleware.RBAC(admin), h.Subjects.Delete)
	subjects.GET("/:code/grades", middleware.RBAC(admin, teacher), h.Grades.Sheet)
	subjects.PUT("/:code/grades", middleware.RBAC(admin, teacher), h.Grades.Bulk)
	subjects.GET("/:code/grades/export", middleware.RBAC(admin, teacher), h.Grades.Export)

	return r
}
