package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/evaluation-system/internal/models"
)

// EnrollmentRepository handles persistence of enrollments. Rows keep insertion order
// through the seq column.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

type enrollmentRow struct {
	models.Enrollment
	SubjectsJSON types.JSONText `db:"subjects"`
}

func (row enrollmentRow) model() (models.Enrollment, error) {
	enrollment := row.Enrollment
	enrollment.Subjects = []models.EnrolledSubject{}
	if len(row.SubjectsJSON) > 0 {
		if err := row.SubjectsJSON.Unmarshal(&enrollment.Subjects); err != nil {
			return models.Enrollment{}, fmt.Errorf("decode enrollment subjects: %w", err)
		}
	}
	return normalizeEnrollment(enrollment), nil
}

const enrollmentColumns = `student_id, year_level, semester, status, subjects`

// List returns every enrollment in insertion order.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.Enrollment, error) {
	var rows []enrollmentRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+enrollmentColumns+` FROM enrollments ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return decodeEnrollments(rows)
}

// ListByStudent returns the student's enrollments in insertion order.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var rows []enrollmentRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 ORDER BY seq`, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return decodeEnrollments(rows)
}

// Upsert inserts the enrollment or replaces status and subjects of the existing row,
// keeping its position.
func (r *EnrollmentRepository) Upsert(ctx context.Context, enrollment *models.Enrollment) error {
	subjects := enrollment.Subjects
	if subjects == nil {
		subjects = []models.EnrolledSubject{}
	}
	payload, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("encode enrollment subjects: %w", err)
	}
	const query = `INSERT INTO enrollments (student_id, year_level, semester, status, subjects)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id, year_level, semester) DO UPDATE SET status = EXCLUDED.status, subjects = EXCLUDED.subjects`
	if _, err := r.db.ExecContext(ctx, query, enrollment.StudentID, enrollment.YearLevel, enrollment.Semester,
		enrollment.Status, types.JSONText(payload)); err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

// Delete removes the student's enrollment for one term.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, yearLevel, semester string) error {
	const query = `DELETE FROM enrollments WHERE student_id = $1 AND lower(year_level) = lower($2) AND lower(semester) = lower($3)`
	if _, err := r.db.ExecContext(ctx, query, studentID, yearLevel, semester); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// DeleteByStudent removes every enrollment of the student.
func (r *EnrollmentRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete enrollments: %w", err)
	}
	return nil
}

func decodeEnrollments(rows []enrollmentRow) ([]models.Enrollment, error) {
	enrollments := make([]models.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollment, err := row.model()
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, nil
}
