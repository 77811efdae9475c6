package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectHandlerImportRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeSubjectSrv{}
	handler := NewSubjectHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/subjects/import", nil)

	handler.Import(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, service.imported)
}

func TestSubjectHandlerImportStreamsUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeSubjectSrv{}
	handler := NewSubjectHandler(service)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "subjects.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("workbook-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/subjects/import", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())

	handler.Import(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "workbook-bytes", string(service.imported))
}

func TestSubjectHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubjectHandler(&fakeSubjectSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/subjects/XX999", nil)
	c.Params = gin.Params{{Key: "code", Value: "XX999"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "SUBJECT_NOT_FOUND")
}
