package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

func TestEnrollmentHandlerOptionsReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	next := academic.Term{YearLevel: academic.FirstYear, Semester: academic.SecondSemester}
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{
		options:   &dto.EnrollmentOptions{StudentID: "1001", Next: &next, MaxUnits: 26},
		optionHit: true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/1001/enrollment-options", nil)
	c.Params = gin.Params{{Key: "id", Value: "1001"}}

	handler.Options(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
	assert.Equal(t, "1001", envelope.Data["studentId"])
	assert.EqualValues(t, 26, envelope.Data["maxUnits"])
}

func TestEnrollmentHandlerOptionsGraduated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{err: appErrors.Clone(appErrors.ErrGraduated, "")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/1001/enrollment-options", nil)

	handler.Options(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "GRADUATED", envelope.Error.Code)
}

func TestEnrollmentHandlerCommitPassesSelection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeEnrollmentSrv{}
	handler := NewEnrollmentHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/1001/enrollments", strings.NewReader(`{"codes":["CS102","MATH102"]}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1001"}}

	handler.Commit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1001", service.committed.studentID)
	assert.Equal(t, []string{"CS102", "MATH102"}, service.committed.codes)
}

func TestEnrollmentHandlerCommitUnitsExceeded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{err: appErrors.UnitsExceeded(27, 26)})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/1001/enrollments", strings.NewReader(`{"codes":["A","B"]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Commit(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNITS_EXCEEDED", envelope.Error.Code)
	assert.EqualValues(t, 27, envelope.Error.Details["actual"])
	assert.EqualValues(t, 26, envelope.Error.Details["limit"])
}

func TestEnrollmentHandlerCommitRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeEnrollmentSrv{}
	handler := NewEnrollmentHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/1001/enrollments", strings.NewReader(`{"codes":`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Commit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.committed.studentID)
}

func TestEnrollmentHandlerHistoryRendersSortedSets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/1001/history", nil)
	c.Params = gin.Params{{Key: "id", Value: "1001"}}

	handler.History(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, []interface{}{"CS101"}, envelope.Data["passed"])
	assert.Equal(t, []interface{}{}, envelope.Data["failed"])
}
