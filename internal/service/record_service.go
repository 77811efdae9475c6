package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
	"github.com/noah-isme/evaluation-system/pkg/export"
)

const recordsDir = "records"

type recordStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type recordEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// RecordConfig tunes academic record computation and export retention.
type RecordConfig struct {
	TotalUnits int
	ResultTTL  time.Duration
}

// RecordService builds academic records and persists rendered exports.
type RecordService struct {
	students    recordStudentReader
	enrollments recordEnrollmentReader
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	xlsx        xlsxRenderer
	logger      *zap.Logger
	cfg         RecordConfig
}

// NewRecordService constructs a RecordService. Nil renderers fall back to the pkg/export defaults.
func NewRecordService(students recordStudentReader, enrollments recordEnrollmentReader, storage fileStorage, cfg RecordConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TotalUnits <= 0 {
		cfg.TotalUnits = academic.TotalUnitsRequired
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("Record")
	}
	return &RecordService{
		students:    students,
		enrollments: enrollments,
		storage:     storage,
		csv:         csv,
		pdf:         pdf,
		xlsx:        xlsx,
		logger:      logger,
		cfg:         cfg,
	}
}

// Record returns the student's enrollments with GPA and unit totals.
func (s *RecordService) Record(ctx context.Context, studentID string) (*dto.AcademicRecord, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrStudentNotFound, "student")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "load enrollments")
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	record := &dto.AcademicRecord{
		Student:     *student,
		Enrollments: enrollments,
		Summary:     academic.Summarize(enrollments, s.cfg.TotalUnits),
	}
	next, ok, err := academic.NextTerm(academic.Term{YearLevel: student.YearLevel, Semester: student.Semester})
	if err != nil {
		s.logger.Warn("student has an unrecognised term", zap.String("student_id", studentID), zap.Error(err))
		return record, nil
	}
	if ok {
		record.Next = &next
	} else {
		record.Graduated = true
	}
	return record, nil
}

// Export renders the academic record in the requested format and stores it under records/.
func (s *RecordService) Export(ctx context.Context, studentID string, format dto.ExportFormat) (*dto.ExportResult, error) {
	record, err := s.Record(ctx, studentID)
	if err != nil {
		return nil, err
	}
	dataset := recordDataset(record, s.cfg.TotalUnits)
	title := fmt.Sprintf("Academic Record %s", record.Student.ID)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case dto.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case dto.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	case dto.ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset)
		contentType = xlsxContentType
	default:
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"),
			map[string]interface{}{"format": string(format)})
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render record")
	}

	filename := fmt.Sprintf("%s-%s.%s", sanitizeFilename(record.Student.ID), uuid.NewString(), format)
	relPath, err := s.storage.Save(path.Join(recordsDir, filename), payload)
	if err != nil {
		return nil, storeError(err, "store record export")
	}
	s.logger.Info("record exported", zap.String("student_id", studentID), zap.String("path", relPath))
	return &dto.ExportResult{
		Filename:    filename,
		ContentType: contentType,
		Path:        relPath,
		Content:     payload,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// Open returns a handle to a stored export.
func (s *RecordService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes exports older than ttl (defaults to the configured ResultTTL when ttl <= 0).
func (s *RecordService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func recordDataset(record *dto.AcademicRecord, totalUnits int) export.Dataset {
	headers := []string{"Year Level", "Semester", "Code", "Name", "Units", "Grade", "Remark"}
	rows := make([]map[string]string, 0)
	for _, enrollment := range record.Enrollments {
		for _, subject := range enrollment.Subjects {
			rows = append(rows, map[string]string{
				"Year Level": enrollment.YearLevel,
				"Semester":   enrollment.Semester,
				"Code":       subject.Code,
				"Name":       subject.Name,
				"Units":      fmt.Sprintf("%d", subject.Units),
				"Grade":      formatGrade(subject.Grade),
				"Remark":     gradeRemark(subject.Grade),
			})
		}
	}

	standing := "Graduated"
	if record.Next != nil {
		standing = "Next term: " + record.Next.String()
	}
	notes := []string{
		fmt.Sprintf("Student: %s %s", record.Student.ID, record.Student.FullName()),
		fmt.Sprintf("Current term: %s / %s", record.Student.YearLevel, record.Student.Semester),
		fmt.Sprintf("GPA: %.2f", record.GPA),
		fmt.Sprintf("Units completed: %d / %d", record.UnitsCompleted, totalUnits),
		fmt.Sprintf("Units remaining: %d", record.UnitsRemaining),
		standing,
	}
	return export.Dataset{Headers: headers, Rows: rows, Notes: notes}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
