package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

var adminActor = models.Actor{Username: "admin", Role: models.RoleAdmin}

type gradeFixture struct {
	svc         *GradeService
	enrollments *mockEnrollmentRepo
	students    *mockStudentRepo
	cache       *mockCacheRepo
	metrics     *MetricsService
}

func newGradeFixture() *gradeFixture {
	f := &gradeFixture{
		students: newMockStudentRepo(
			studentFixture("1001", academic.FirstYear, academic.SecondSemester),
			studentFixture("1002", academic.FirstYear, academic.SecondSemester),
		),
		enrollments: &mockEnrollmentRepo{items: []models.Enrollment{
			enrolled("1001", academic.FirstYear, academic.FirstSemester, map[string]float64{"A101": 4.0, "A102": 0}, 3),
			enrolled("1002", academic.FirstYear, academic.FirstSemester, map[string]float64{"A101": 1.5}, 3),
			enrolled("1001", academic.FirstYear, academic.SecondSemester, map[string]float64{"A101": 0}, 3),
		}},
		cache:   newMockCacheRepo(),
		metrics: NewMetricsService(),
	}
	teachers := newMockTeacherRepo(models.Teacher{ID: "T01", FirstName: "Grace", LastName: "Hopper", AssignedSubjects: []string{"A101"}})
	subjects := newMockSubjectRepo(
		subjectFixture("A101", academic.FirstYear, academic.FirstSemester, 3),
		subjectFixture("A102", academic.FirstYear, academic.FirstSemester, 3),
	)
	cache := NewCacheService(f.cache, f.metrics, 0, zap.NewNop(), true)
	f.svc = NewGradeService(f.enrollments, f.students, teachers, subjects, cache, f.metrics, nil, nil, zap.NewNop())
	return f
}

func TestGradeServiceUpdatesFirstMatch(t *testing.T) {
	f := newGradeFixture()
	_ = f.cache.Set(context.Background(), EligibilityKey("1001"), map[string]string{"stale": "yes"}, 0)

	row, err := f.svc.UpdateGrade(context.Background(), adminActor, dto.UpdateGradeRequest{StudentID: "1001", SubjectCode: "a101", Grade: 2.5})
	require.NoError(t, err)
	assert.Equal(t, 2.5, row.Grade)
	assert.Equal(t, 2.5, f.enrollments.items[0].Subjects[0].Grade)
	assert.Equal(t, 0.0, f.enrollments.items[2].Subjects[0].Grade, "later enrollments keep their grade")
	assert.False(t, f.cache.has(EligibilityKey("1001")))
	assert.Equal(t, uint64(1), f.metrics.Snapshot().GradesUpdated)
}

func TestGradeServiceRejectsInvalidGrade(t *testing.T) {
	f := newGradeFixture()
	f.students.findErr = errors.New("must not be read")

	for _, grade := range []float64{0.5, 5.5, -1} {
		_, err := f.svc.UpdateGrade(context.Background(), adminActor, dto.UpdateGradeRequest{StudentID: "1001", SubjectCode: "A101", Grade: grade})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidGrade))
		assert.Equal(t, grade, appErrors.FromError(err).Details["value"])
	}
	assert.Equal(t, 4.0, f.enrollments.items[0].Subjects[0].Grade)
}

func TestGradeServiceResetToZero(t *testing.T) {
	f := newGradeFixture()

	row, err := f.svc.UpdateGrade(context.Background(), adminActor, dto.UpdateGradeRequest{StudentID: "1001", SubjectCode: "A101", Grade: 0})
	require.NoError(t, err)
	assert.Zero(t, row.Grade)
}

func TestGradeServiceNotEnrolled(t *testing.T) {
	f := newGradeFixture()

	_, err := f.svc.UpdateGrade(context.Background(), adminActor, dto.UpdateGradeRequest{StudentID: "1002", SubjectCode: "A102", Grade: 2})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.UpdateGrade(context.Background(), adminActor, dto.UpdateGradeRequest{StudentID: "9999", SubjectCode: "A101", Grade: 2})
	assert.True(t, errors.Is(err, appErrors.ErrStudentNotFound))
}

func TestGradeServiceTeacherAuthorization(t *testing.T) {
	f := newGradeFixture()
	teacher := models.Actor{Username: "T01", Role: models.RoleTeacher}

	_, err := f.svc.UpdateGrade(context.Background(), teacher, dto.UpdateGradeRequest{StudentID: "1001", SubjectCode: "A101", Grade: 1.75})
	require.NoError(t, err)

	_, err = f.svc.UpdateGrade(context.Background(), teacher, dto.UpdateGradeRequest{StudentID: "1001", SubjectCode: "A102", Grade: 1.75})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.UpdateGrade(context.Background(), models.Actor{Username: "1001", Role: models.RoleStudent}, dto.UpdateGradeRequest{StudentID: "1001", SubjectCode: "A101", Grade: 1})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestGradeServiceGradeSheet(t *testing.T) {
	f := newGradeFixture()

	sheet, err := f.svc.GradeSheet(context.Background(), adminActor, "A101")
	require.NoError(t, err)
	assert.Equal(t, "Subject A101", sheet.SubjectName)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "1001", sheet.Rows[0].StudentID)
	assert.Equal(t, RemarkFailed, sheet.Rows[0].Remark)
	assert.Equal(t, RemarkNoGrade, sheet.Rows[1].Remark)
	assert.Equal(t, "1002", sheet.Rows[2].StudentID)
	assert.Equal(t, RemarkPassed, sheet.Rows[2].Remark)
	assert.Equal(t, "Ada Lovelace", sheet.Rows[2].Name)

	_, err = f.svc.GradeSheet(context.Background(), adminActor, "Z999")
	assert.True(t, errors.Is(err, appErrors.ErrSubjectNotFound))
}

func TestGradeServiceBulkUpdate(t *testing.T) {
	f := newGradeFixture()

	result, err := f.svc.BulkUpdate(context.Background(), adminActor, "A101", dto.BulkGradeRequest{Grades: []dto.StudentGrade{
		{StudentID: "1001", Grade: 2},
		{StudentID: "1002", Grade: 7},
		{StudentID: "9999", Grade: 2},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1001"}, result.Updated)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, appErrors.ErrInvalidGrade.Code, result.Failed[0].Code)
	assert.Equal(t, appErrors.ErrStudentNotFound.Code, result.Failed[1].Code)
	assert.Equal(t, 1.5, f.enrollments.items[1].Subjects[0].Grade)

	_, err = f.svc.BulkUpdate(context.Background(), adminActor, "A101", dto.BulkGradeRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestGradeServiceExportSheet(t *testing.T) {
	f := newGradeFixture()

	result, err := f.svc.ExportSheet(context.Background(), adminActor, "A101")
	require.NoError(t, err)
	assert.Equal(t, "A101-grades.xlsx", result.Filename)
	assert.Equal(t, xlsxContentType, result.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer book.Close() //nolint:errcheck
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Student ID", rows[0][0])
	assert.Equal(t, "4.00", rows[1][4])
}
