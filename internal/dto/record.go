package dto

import (
	"time"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/models"
)

// AcademicRecord is a student's transcript with summary figures.
type AcademicRecord struct {
	Student     models.Student      `json:"student"`
	Enrollments []models.Enrollment `json:"enrollments"`
	academic.Summary
	Next      *academic.Term `json:"next,omitempty"`
	Graduated bool           `json:"graduated"`
}

// ExportFormat selects the rendered file type.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportResult describes a rendered export stored on disk.
type ExportResult struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"-"`
	Content     []byte    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}
