package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/noah-isme/evaluation-system/internal/models"
	"github.com/noah-isme/evaluation-system/pkg/storage"
)

// FileUserRepository persists users in users.json.
type FileUserRepository struct {
	docs *documentCollection[models.User]
}

// NewFileUserRepository constructs a FileUserRepository.
func NewFileUserRepository(store *storage.LocalStorage) *FileUserRepository {
	return &FileUserRepository{docs: newDocumentCollection[models.User](store, usersDocument, "users")}
}

// List returns every user in file order.
func (r *FileUserRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.docs.view(func(items []models.User) error {
		out = items
		return nil
	})
	return out, err
}

// FindByUsername returns the user or sql.ErrNoRows.
func (r *FileUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var found *models.User
	err := r.docs.view(func(items []models.User) error {
		for i := range items {
			if items[i].Username == username {
				user := items[i]
				found = &user
				return nil
			}
		}
		return sql.ErrNoRows
	})
	return found, err
}

// Upsert replaces the user with the same username or appends a new one.
func (r *FileUserRepository) Upsert(ctx context.Context, user *models.User) error {
	return r.docs.update(func(items []models.User) ([]models.User, error) {
		for i := range items {
			if items[i].Username == user.Username {
				items[i] = *user
				return items, nil
			}
		}
		return append(items, *user), nil
	})
}

// Delete removes the user or returns sql.ErrNoRows.
func (r *FileUserRepository) Delete(ctx context.Context, username string) error {
	return r.docs.update(func(items []models.User) ([]models.User, error) {
		for i := range items {
			if items[i].Username == username {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, sql.ErrNoRows
	})
}

// FileStudentRepository persists students in students.json.
type FileStudentRepository struct {
	docs *documentCollection[models.Student]
}

// NewFileStudentRepository constructs a FileStudentRepository.
func NewFileStudentRepository(store *storage.LocalStorage) *FileStudentRepository {
	return &FileStudentRepository{docs: newDocumentCollection[models.Student](store, studentsDocument, "students")}
}

// List returns every student in file order.
func (r *FileStudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	err := r.docs.view(func(items []models.Student) error {
		out = items
		return nil
	})
	return out, err
}

// FindByID returns the student or sql.ErrNoRows.
func (r *FileStudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var found *models.Student
	err := r.docs.view(func(items []models.Student) error {
		for i := range items {
			if items[i].ID == id {
				student := items[i]
				found = &student
				return nil
			}
		}
		return sql.ErrNoRows
	})
	return found, err
}

// Upsert replaces the student with the same id or appends a new one.
func (r *FileStudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	return r.docs.update(func(items []models.Student) ([]models.Student, error) {
		for i := range items {
			if items[i].ID == student.ID {
				items[i] = *student
				return items, nil
			}
		}
		return append(items, *student), nil
	})
}

// Delete removes the student or returns sql.ErrNoRows.
func (r *FileStudentRepository) Delete(ctx context.Context, id string) error {
	return r.docs.update(func(items []models.Student) ([]models.Student, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, sql.ErrNoRows
	})
}

// FileTeacherRepository persists teachers in teachers.json.
type FileTeacherRepository struct {
	docs *documentCollection[models.Teacher]
}

// NewFileTeacherRepository constructs a FileTeacherRepository.
func NewFileTeacherRepository(store *storage.LocalStorage) *FileTeacherRepository {
	return &FileTeacherRepository{docs: newDocumentCollection[models.Teacher](store, teachersDocument, "teachers")}
}

// List returns every teacher in file order.
func (r *FileTeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	var out []models.Teacher
	err := r.docs.view(func(items []models.Teacher) error {
		out = make([]models.Teacher, len(items))
		for i, t := range items {
			out[i] = normalizeTeacher(t)
		}
		return nil
	})
	return out, err
}

// FindByID returns the teacher or sql.ErrNoRows.
func (r *FileTeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	var found *models.Teacher
	err := r.docs.view(func(items []models.Teacher) error {
		for i := range items {
			if items[i].ID == id {
				teacher := normalizeTeacher(items[i])
				found = &teacher
				return nil
			}
		}
		return sql.ErrNoRows
	})
	return found, err
}

// Upsert replaces the teacher with the same id or appends a new one.
func (r *FileTeacherRepository) Upsert(ctx context.Context, teacher *models.Teacher) error {
	return r.docs.update(func(items []models.Teacher) ([]models.Teacher, error) {
		for i := range items {
			if items[i].ID == teacher.ID {
				items[i] = normalizeTeacher(*teacher)
				return items, nil
			}
		}
		return append(items, normalizeTeacher(*teacher)), nil
	})
}

// Delete removes the teacher or returns sql.ErrNoRows.
func (r *FileTeacherRepository) Delete(ctx context.Context, id string) error {
	return r.docs.update(func(items []models.Teacher) ([]models.Teacher, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, sql.ErrNoRows
	})
}

// FileSubjectRepository persists the catalogue in subjects.json. Codes match
// case-insensitively and are stored upper-case.
type FileSubjectRepository struct {
	docs *documentCollection[models.Subject]
}

// NewFileSubjectRepository constructs a FileSubjectRepository.
func NewFileSubjectRepository(store *storage.LocalStorage) *FileSubjectRepository {
	return &FileSubjectRepository{docs: newDocumentCollection[models.Subject](store, subjectsDocument, "subjects")}
}

// List returns every subject in file order.
func (r *FileSubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var out []models.Subject
	err := r.docs.view(func(items []models.Subject) error {
		out = make([]models.Subject, len(items))
		for i, s := range items {
			out[i] = normalizeSubject(s)
		}
		return nil
	})
	return out, err
}

// FindByCode returns the subject or sql.ErrNoRows.
func (r *FileSubjectRepository) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	var found *models.Subject
	err := r.docs.view(func(items []models.Subject) error {
		for i := range items {
			if strings.EqualFold(items[i].Code, code) {
				subject := normalizeSubject(items[i])
				found = &subject
				return nil
			}
		}
		return sql.ErrNoRows
	})
	return found, err
}

// Upsert replaces the subject with the same code or appends a new one.
func (r *FileSubjectRepository) Upsert(ctx context.Context, subject *models.Subject) error {
	return r.docs.update(func(items []models.Subject) ([]models.Subject, error) {
		normalized := normalizeSubject(*subject)
		for i := range items {
			if strings.EqualFold(items[i].Code, subject.Code) {
				items[i] = normalized
				return items, nil
			}
		}
		return append(items, normalized), nil
	})
}

// Delete removes the subject or returns sql.ErrNoRows. References from other subjects,
// teachers and enrollments are left in place.
func (r *FileSubjectRepository) Delete(ctx context.Context, code string) error {
	return r.docs.update(func(items []models.Subject) ([]models.Subject, error) {
		for i := range items {
			if strings.EqualFold(items[i].Code, code) {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, sql.ErrNoRows
	})
}

// FileEnrollmentRepository persists enrollments in enrollments.json, keeping insertion
// order.
type FileEnrollmentRepository struct {
	docs *documentCollection[models.Enrollment]
}

// NewFileEnrollmentRepository constructs a FileEnrollmentRepository.
func NewFileEnrollmentRepository(store *storage.LocalStorage) *FileEnrollmentRepository {
	return &FileEnrollmentRepository{docs: newDocumentCollection[models.Enrollment](store, enrollmentsDocument, "enrollments")}
}

// List returns every enrollment in insertion order.
func (r *FileEnrollmentRepository) List(ctx context.Context) ([]models.Enrollment, error) {
	var out []models.Enrollment
	err := r.docs.view(func(items []models.Enrollment) error {
		out = make([]models.Enrollment, len(items))
		for i, e := range items {
			out[i] = normalizeEnrollment(e)
		}
		return nil
	})
	return out, err
}

// ListByStudent returns the student's enrollments in insertion order.
func (r *FileEnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	out := make([]models.Enrollment, 0)
	err := r.docs.view(func(items []models.Enrollment) error {
		for _, e := range items {
			if e.StudentID == studentID {
				out = append(out, normalizeEnrollment(e))
			}
		}
		return nil
	})
	return out, err
}

// Upsert replaces the enrollment with the same (student, year level, semester) key in
// place or appends a new one.
func (r *FileEnrollmentRepository) Upsert(ctx context.Context, enrollment *models.Enrollment) error {
	return r.docs.update(func(items []models.Enrollment) ([]models.Enrollment, error) {
		normalized := normalizeEnrollment(*enrollment)
		for i := range items {
			if items[i].StudentID == enrollment.StudentID && items[i].SameTerm(enrollment.YearLevel, enrollment.Semester) {
				items[i] = normalized
				return items, nil
			}
		}
		return append(items, normalized), nil
	})
}

// Delete removes the student's enrollment for one term. Deleting nothing is not an
// error.
func (r *FileEnrollmentRepository) Delete(ctx context.Context, studentID, yearLevel, semester string) error {
	return r.docs.update(func(items []models.Enrollment) ([]models.Enrollment, error) {
		kept := items[:0]
		for _, e := range items {
			if e.StudentID != studentID || !e.SameTerm(yearLevel, semester) {
				kept = append(kept, e)
			}
		}
		return kept, nil
	})
}

// DeleteByStudent removes every enrollment of the student. Deleting nothing is not an
// error.
func (r *FileEnrollmentRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	return r.docs.update(func(items []models.Enrollment) ([]models.Enrollment, error) {
		kept := items[:0]
		for _, e := range items {
			if e.StudentID != studentID {
				kept = append(kept, e)
			}
		}
		return kept, nil
	})
}

func normalizeTeacher(t models.Teacher) models.Teacher {
	codes := make([]string, 0, len(t.AssignedSubjects))
	for _, code := range t.AssignedSubjects {
		codes = append(codes, models.NormalizeCode(code))
	}
	t.AssignedSubjects = codes
	return t
}

func normalizeSubject(s models.Subject) models.Subject {
	s.Code = models.NormalizeCode(s.Code)
	prereqs := make([]string, 0, len(s.Prerequisites))
	for _, code := range s.Prerequisites {
		if code = models.NormalizeCode(code); code != "" {
			prereqs = append(prereqs, code)
		}
	}
	s.Prerequisites = prereqs
	return s
}

func normalizeEnrollment(e models.Enrollment) models.Enrollment {
	rows := make([]models.EnrolledSubject, len(e.Subjects))
	for i, row := range e.Subjects {
		row.Code = models.NormalizeCode(row.Code)
		rows[i] = row
	}
	e.Subjects = rows
	return e
}
