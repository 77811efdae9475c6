package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	"github.com/noah-isme/evaluation-system/internal/service"
)

func newTestRouter(checks map[string]ReadinessCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := fakeTokens{
		"admin":   {Username: "admin", Role: models.RoleAdmin},
		"teacher": {Username: "T-01", Role: models.RoleTeacher},
		"s1001":   {Username: "1001", Role: models.RoleStudent},
		"s1002":   {Username: "1002", Role: models.RoleStudent},
	}
	metrics := service.NewMetricsService()
	return NewRouter(RouterConfig{Tokens: tokens, Metrics: metrics}, Handlers{
		Auth:       NewAuthHandler(fakeAuthSrv{}),
		Users:      NewUserHandler(nil),
		Students:   NewStudentHandler(nil),
		Teachers:   NewTeacherHandler(nil),
		Subjects:   NewSubjectHandler(&fakeSubjectSrv{}),
		Enrollment: NewEnrollmentHandler(&fakeEnrollmentSrv{options: &dto.EnrollmentOptions{StudentID: "1001"}}),
		Records:    NewRecordHandler(&fakeRecordSrv{}),
		Grades:     NewGradeHandler(&fakeGradeSrv{}),
		Metrics:    NewMetricsHandler(metrics, checks),
	})
}

func serve(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterStudentAccessIsLimitedToSelf(t *testing.T) {
	r := newTestRouter(nil)

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{name: "anonymous", token: "", status: http.StatusUnauthorized},
		{name: "unknown token", token: "forged", status: http.StatusUnauthorized},
		{name: "own record", token: "s1001", status: http.StatusOK},
		{name: "other student", token: "s1002", status: http.StatusForbidden},
		{name: "admin", token: "admin", status: http.StatusOK},
		{name: "teacher", token: "teacher", status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(r, http.MethodGet, "/api/v1/students/1001/enrollment-options", tc.token, "")
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRouterTeacherCanReadHistoryButNotManageUsers(t *testing.T) {
	r := newTestRouter(nil)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/students/1001/history", "teacher", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/users", "teacher", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/v1/subjects", "teacher", `{"code":"X"}`).Code)
}

func TestRouterStudentCannotGrade(t *testing.T) {
	r := newTestRouter(nil)

	rec := serve(r, http.MethodPut, "/api/v1/students/1001/grades/CS101", "s1001", `{"grade":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(r, http.MethodPut, "/api/v1/students/1001/grades/CS101", "teacher", `{"grade":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterLoginIsPublic(t *testing.T) {
	r := newTestRouter(nil)

	rec := serve(r, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"secret","role":"Admin"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token-admin")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(r, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"wrong","role":"Admin"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterReadinessReportsFailingChecks(t *testing.T) {
	r := newTestRouter(map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
		"cache": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := serve(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)
}

func TestRouterMetricsSummaryIsAdminOnly(t *testing.T) {
	r := newTestRouter(nil)

	serve(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/metrics/summary", "s1001", "").Code)

	rec := serve(r, http.MethodGet, "/api/v1/metrics/summary", "admin", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requests_total")
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", "", "").Code)
}
