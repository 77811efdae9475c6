package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/evaluation-system/internal/models"
)

// SubjectRepository manages persistence for the subject catalogue.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

type subjectRow struct {
	models.Subject
	Prereqs pq.StringArray `db:"prerequisites"`
}

func (row subjectRow) model() models.Subject {
	subject := row.Subject
	subject.Prerequisites = append([]string{}, row.Prereqs...)
	return subject
}

const subjectColumns = `code, name, units, department, year_level, semester, prerequisites`

// List returns the full catalogue ordered by code.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var rows []subjectRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+subjectColumns+` FROM subjects ORDER BY code`); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	subjects := make([]models.Subject, len(rows))
	for i, row := range rows {
		subjects[i] = row.model()
	}
	return subjects, nil
}

// FindByCode fetches a subject by code, ignoring case.
func (r *SubjectRepository) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	var row subjectRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+subjectColumns+` FROM subjects WHERE code = $1`, models.NormalizeCode(code)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	subject := row.model()
	return &subject, nil
}

// Upsert inserts a subject or replaces every attribute of the existing row.
func (r *SubjectRepository) Upsert(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (code, name, units, department, year_level, semester, prerequisites)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, units = EXCLUDED.units,
        department = EXCLUDED.department, year_level = EXCLUDED.year_level, semester = EXCLUDED.semester,
        prerequisites = EXCLUDED.prerequisites`
	normalized := normalizeSubject(*subject)
	if _, err := r.db.ExecContext(ctx, query, normalized.Code, normalized.Name, normalized.Units, normalized.Department,
		normalized.YearLevel, normalized.Semester, pq.Array(normalized.Prerequisites)); err != nil {
		return fmt.Errorf("upsert subject: %w", err)
	}
	return nil
}

// Delete removes a subject. A missing subject yields sql.ErrNoRows.
func (r *SubjectRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE code = $1`, models.NormalizeCode(code))
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return requireAffected(res)
}
