package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/evaluation-system/internal/dto"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

func TestRecordHandlerExportDefaultsToPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeRecordSrv{}
	handler := NewRecordHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/1001/record/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "1001"}}

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ExportFormatPDF, service.format)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="1001-record.pdf"`, rec.Header().Get("Content-Disposition"))
}

func TestRecordHandlerExportNormalisesFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeRecordSrv{}
	handler := NewRecordHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/1001/record/export?format=CSV", nil)

	handler.Export(c)

	assert.Equal(t, dto.ExportFormatCSV, service.format)
}

func TestRecordHandlerExportUnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRecordHandler(&fakeRecordSrv{err: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/1001/record/export?format=doc", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
