package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/pkg/response"
)

type recordService interface {
	Record(ctx context.Context, studentID string) (*dto.AcademicRecord, error)
	Export(ctx context.Context, studentID string, format dto.ExportFormat) (*dto.ExportResult, error)
}

// RecordHandler serves academic records.
type RecordHandler struct {
	records recordService
}

// NewRecordHandler constructs RecordHandler.
func NewRecordHandler(records recordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// Get godoc
// @Summary Academic record with GPA and progress
// @Tags Records
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/record [get]
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.records.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Download the academic record
// @Tags Records
// @Produce octet-stream
// @Param id path string true "Student ID"
// @Param format query string false "csv, pdf or xlsx" default(pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /students/{id}/record/export [get]
func (h *RecordHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportFormatPDF))))
	result, err := h.records.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Content)
}
