package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/evaluation-system/internal/models"
)

// TeacherRepository manages persistence for instructor records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

type teacherRow struct {
	models.Teacher
	Assigned pq.StringArray `db:"assigned_subjects"`
}

func (row teacherRow) model() models.Teacher {
	teacher := row.Teacher
	teacher.AssignedSubjects = append([]string{}, row.Assigned...)
	return teacher
}

const teacherColumns = `id, first_name, last_name, email, department, position, assigned_subjects`

// List returns every teacher ordered by id.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	var rows []teacherRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+teacherColumns+` FROM teachers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	teachers := make([]models.Teacher, len(rows))
	for i, row := range rows {
		teachers[i] = row.model()
	}
	return teachers, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	var row teacherRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	teacher := row.model()
	return &teacher, nil
}

// Upsert inserts a teacher or replaces every attribute of the existing row.
func (r *TeacherRepository) Upsert(ctx context.Context, teacher *models.Teacher) error {
	const query = `INSERT INTO teachers (id, first_name, last_name, email, department, position, assigned_subjects)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
        email = EXCLUDED.email, department = EXCLUDED.department, position = EXCLUDED.position,
        assigned_subjects = EXCLUDED.assigned_subjects`
	assigned := teacher.AssignedSubjects
	if assigned == nil {
		assigned = []string{}
	}
	if _, err := r.db.ExecContext(ctx, query, teacher.ID, teacher.FirstName, teacher.LastName, teacher.Email,
		teacher.Department, teacher.Position, pq.Array(assigned)); err != nil {
		return fmt.Errorf("upsert teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher. A missing teacher yields sql.ErrNoRows.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return requireAffected(res)
}
