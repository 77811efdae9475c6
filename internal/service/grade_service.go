package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
	"github.com/noah-isme/evaluation-system/pkg/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Grade remarks shown on grading rosters.
const (
	RemarkPassed  = "Passed"
	RemarkFailed  = "Failed"
	RemarkNoGrade = "No grade"
)

type gradeEnrollmentRepository interface {
	List(ctx context.Context) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	Upsert(ctx context.Context, enrollment *models.Enrollment) error
}

type gradeStudentReader interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type gradeTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// GradeService records grades on enrolled subjects.
type GradeService struct {
	enrollments gradeEnrollmentRepository
	students    gradeStudentReader
	teachers    gradeTeacherReader
	subjects    subjectLookup
	cache       *CacheService
	metrics     *MetricsService
	xlsx        xlsxRenderer
	validator   *validator.Validate
	logger      *zap.Logger

	mu sync.Mutex
}

// NewGradeService constructs the grade service.
func NewGradeService(enrollments gradeEnrollmentRepository, students gradeStudentReader, teachers gradeTeacherReader, subjects subjectLookup, cache *CacheService, metrics *MetricsService, xlsx xlsxRenderer, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("Grades")
	}
	return &GradeService{
		enrollments: enrollments,
		students:    students,
		teachers:    teachers,
		subjects:    subjects,
		cache:       cache,
		metrics:     metrics,
		xlsx:        xlsx,
		validator:   validate,
		logger:      logger,
	}
}

// UpdateGrade sets the grade of the first enrolled row matching the subject code.
// The grade is validated before any state is read.
func (s *GradeService) UpdateGrade(ctx context.Context, actor models.Actor, req dto.UpdateGradeRequest) (row *models.EnrolledSubject, err error) {
	defer func() { s.metrics.RecordGradeUpdate(err) }()

	if err := academic.ValidateGrade(req.Grade); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	code := models.NormalizeCode(req.SubjectCode)
	if err := s.authorize(ctx, actor, code); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, req.StudentID, code, req.Grade)
}

// BulkUpdate applies several grade edits for one subject and reports rejected rows.
func (s *GradeService) BulkUpdate(ctx context.Context, actor models.Actor, subjectCode string, req dto.BulkGradeRequest) (*dto.BulkGradeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk grade payload")
	}
	code := models.NormalizeCode(subjectCode)
	if err := s.authorize(ctx, actor, code); err != nil {
		return nil, err
	}
	if _, err := s.subjects.FindByCode(ctx, code); err != nil {
		return nil, lookupError(err, appErrors.ErrSubjectNotFound, "subject")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &dto.BulkGradeResult{Updated: []string{}, Failed: []dto.GradeRowError{}}
	for _, item := range req.Grades {
		err := academic.ValidateGrade(item.Grade)
		if err == nil {
			_, err = s.apply(ctx, item.StudentID, code, item.Grade)
		}
		s.metrics.RecordGradeUpdate(err)
		if err != nil {
			appErr := appErrors.FromError(err)
			result.Failed = append(result.Failed, dto.GradeRowError{StudentID: item.StudentID, Code: appErr.Code, Message: appErr.Message})
			continue
		}
		result.Updated = append(result.Updated, item.StudentID)
	}
	s.logger.Info("bulk grade update",
		zap.String("subject", code),
		zap.String("actor", actor.Username),
		zap.Int("updated", len(result.Updated)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// GradeSheet lists every enrolled row of the subject with its current grade.
func (s *GradeService) GradeSheet(ctx context.Context, actor models.Actor, subjectCode string) (*dto.GradeSheet, error) {
	code := models.NormalizeCode(subjectCode)
	if err := s.authorize(ctx, actor, code); err != nil {
		return nil, err
	}
	subject, err := s.subjects.FindByCode(ctx, code)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrSubjectNotFound, "subject")
	}
	enrollments, err := s.enrollments.List(ctx)
	if err != nil {
		return nil, storeError(err, "load enrollments")
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, storeError(err, "load students")
	}
	names := make(map[string]string, len(students))
	for _, student := range students {
		names[student.ID] = student.FullName()
	}

	sheet := &dto.GradeSheet{SubjectCode: subject.Code, SubjectName: subject.Name, Units: subject.Units, Rows: []dto.GradeSheetRow{}}
	for _, enrollment := range enrollments {
		for _, row := range enrollment.Subjects {
			if !strings.EqualFold(row.Code, code) {
				continue
			}
			sheet.Rows = append(sheet.Rows, dto.GradeSheetRow{
				StudentID: enrollment.StudentID,
				Name:      names[enrollment.StudentID],
				YearLevel: enrollment.YearLevel,
				Semester:  enrollment.Semester,
				Grade:     row.Grade,
				Remark:    gradeRemark(row.Grade),
			})
		}
	}
	sort.SliceStable(sheet.Rows, func(i, j int) bool {
		return sheet.Rows[i].StudentID < sheet.Rows[j].StudentID
	})
	return sheet, nil
}

// ExportSheet renders the subject's grading roster as an Excel workbook.
func (s *GradeService) ExportSheet(ctx context.Context, actor models.Actor, subjectCode string) (*dto.ExportResult, error) {
	sheet, err := s.GradeSheet(ctx, actor, subjectCode)
	if err != nil {
		return nil, err
	}
	headers := []string{"Student ID", "Name", "Year Level", "Semester", "Grade", "Remark"}
	rows := make([]map[string]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, map[string]string{
			"Student ID": row.StudentID,
			"Name":       row.Name,
			"Year Level": row.YearLevel,
			"Semester":   row.Semester,
			"Grade":      formatGrade(row.Grade),
			"Remark":     row.Remark,
		})
	}
	content, err := s.xlsx.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade sheet")
	}
	return &dto.ExportResult{
		Filename:    fmt.Sprintf("%s-grades.xlsx", sanitizeFilename(sheet.SubjectCode)),
		ContentType: xlsxContentType,
		Content:     content,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// authorize lets admins grade everything and teachers grade their assigned subjects.
func (s *GradeService) authorize(ctx context.Context, actor models.Actor, code string) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByID(ctx, actor.Username)
		if err != nil {
			if isNotFound(err) {
				return appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
			}
			return storeError(err, "load teacher")
		}
		if !teacher.Teaches(code) {
			return appErrors.WithDetails(appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to this teacher"),
				map[string]interface{}{"code": code})
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "only admins and assigned teachers may grade")
	}
}

// apply must run under s.mu.
func (s *GradeService) apply(ctx context.Context, studentID, code string, grade float64) (*models.EnrolledSubject, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, lookupError(err, appErrors.ErrStudentNotFound, "student")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "load enrollments")
	}
	for i := range enrollments {
		enrollment := &enrollments[i]
		for j := range enrollment.Subjects {
			if !strings.EqualFold(enrollment.Subjects[j].Code, code) {
				continue
			}
			enrollment.Subjects[j].Grade = grade
			if err := s.enrollments.Upsert(ctx, enrollment); err != nil {
				return nil, storeError(err, "save grade")
			}
			s.cache.InvalidateStudent(ctx, studentID)
			updated := enrollment.Subjects[j]
			s.logger.Info("grade updated",
				zap.String("student_id", studentID),
				zap.String("subject", code),
				zap.Float64("grade", grade),
			)
			return &updated, nil
		}
	}
	return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "student is not enrolled in subject"),
		map[string]interface{}{"studentId": studentID, "code": code})
}

func gradeRemark(grade float64) string {
	switch {
	case academic.IsPassing(grade):
		return RemarkPassed
	case academic.IsFailing(grade):
		return RemarkFailed
	default:
		return RemarkNoGrade
	}
}

func formatGrade(grade float64) string {
	if grade == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", grade)
}
