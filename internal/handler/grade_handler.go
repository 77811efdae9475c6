package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	"github.com/noah-isme/evaluation-system/pkg/response"
)

type gradeService interface {
	UpdateGrade(ctx context.Context, actor models.Actor, req dto.UpdateGradeRequest) (*models.EnrolledSubject, error)
	BulkUpdate(ctx context.Context, actor models.Actor, subjectCode string, req dto.BulkGradeRequest) (*dto.BulkGradeResult, error)
	GradeSheet(ctx context.Context, actor models.Actor, subjectCode string) (*dto.GradeSheet, error)
	ExportSheet(ctx context.Context, actor models.Actor, subjectCode string) (*dto.ExportResult, error)
}

// GradeHandler exposes grading endpoints for admins and teachers.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Update godoc
// @Summary Set a student's grade for a subject
// @Description Grade 0 clears the grade. Only the first enrollment holding the subject is updated.
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param code path string true "Subject code"
// @Param payload body dto.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/grades/{code} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	req.StudentID = c.Param("id")
	req.SubjectCode = c.Param("code")

	row, err := h.grades.UpdateGrade(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Bulk godoc
// @Summary Set several grades for one subject
// @Tags Grades
// @Accept json
// @Produce json
// @Param code path string true "Subject code"
// @Param payload body dto.BulkGradeRequest true "Grades"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code}/grades [put]
func (h *GradeHandler) Bulk(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.BulkGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.grades.BulkUpdate(c.Request.Context(), actor, c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Sheet godoc
// @Summary Grading roster of a subject
// @Tags Grades
// @Produce json
// @Param code path string true "Subject code"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code}/grades [get]
func (h *GradeHandler) Sheet(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	sheet, err := h.grades.GradeSheet(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Export godoc
// @Summary Download the grading roster as a workbook
// @Tags Grades
// @Produce octet-stream
// @Param code path string true "Subject code"
// @Success 200 {file} file
// @Router /subjects/{code}/grades/export [get]
func (h *GradeHandler) Export(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	result, err := h.grades.ExportSheet(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Content)
}
