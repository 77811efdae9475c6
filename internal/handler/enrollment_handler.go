package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/middleware"
	"github.com/noah-isme/evaluation-system/internal/models"
	"github.com/noah-isme/evaluation-system/pkg/response"
)

type enrollmentService interface {
	ProjectHistory(ctx context.Context, studentID string) (*academic.History, error)
	NextTerm(ctx context.Context, studentID string) (*dto.NextTermResponse, error)
	Options(ctx context.Context, studentID string) (*dto.EnrollmentOptions, bool, error)
	Commit(ctx context.Context, studentID string, req dto.CommitEnrollmentRequest) (*models.Enrollment, error)
}

// EnrollmentHandler exposes the enrollment workflow of a student.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(service enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// History godoc
// @Summary Passed and failed subjects
// @Tags Enrollment
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/history [get]
func (h *EnrollmentHandler) History(c *gin.Context) {
	history, err := h.service.ProjectHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// NextTerm godoc
// @Summary Term following the student's active term
// @Tags Enrollment
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/next-term [get]
func (h *EnrollmentHandler) NextTerm(c *gin.Context) {
	next, err := h.service.NextTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, next, nil)
}

// Options godoc
// @Summary Mandatory, eligible and ineligible subjects for the next term
// @Tags Enrollment
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/enrollment-options [get]
func (h *EnrollmentHandler) Options(c *gin.Context) {
	start := time.Now()
	options, cacheHit, err := h.service.Options(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, options, nil, meta)
}

// Commit godoc
// @Summary Enroll in the next term
// @Description Validates the selection and advances the student to the next term
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.CommitEnrollmentRequest true "Selected subject codes"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{id}/enrollments [post]
func (h *EnrollmentHandler) Commit(c *gin.Context) {
	var req dto.CommitEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.service.Commit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}
