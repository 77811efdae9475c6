package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

type mockUserRepo struct {
	users     map[string]models.User
	upsertErr error
}

func newMockUserRepo(users ...models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]models.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		copy := u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.users[user.Username] = *user
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, username string) error {
	if _, ok := m.users[username]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, username)
	return nil
}

type mockStudentRepo struct {
	mu       sync.Mutex
	students map[string]models.Student
	findErr   error
	upsertErr error
	upserts   int
}

func newMockStudentRepo(students ...models.Student) *mockStudentRepo {
	m := &mockStudentRepo{students: make(map[string]models.Student)}
	for _, s := range students {
		m.students[s.ID] = s
	}
	return m
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if s, ok := m.students[id]; ok {
		copy := s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Upsert(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.students[student.ID] = *student
	m.upserts++
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

type mockTeacherRepo struct {
	teachers map[string]models.Teacher
}

func newMockTeacherRepo(teachers ...models.Teacher) *mockTeacherRepo {
	m := &mockTeacherRepo{teachers: make(map[string]models.Teacher)}
	for _, t := range teachers {
		m.teachers[t.ID] = t
	}
	return m
}

func (m *mockTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(m.teachers))
	for _, t := range m.teachers {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		copy := t
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) Upsert(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.teachers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.teachers, id)
	return nil
}

type mockSubjectRepo struct {
	subjects map[string]models.Subject
	listErr  error
}

func newMockSubjectRepo(subjects ...models.Subject) *mockSubjectRepo {
	m := &mockSubjectRepo{subjects: make(map[string]models.Subject)}
	for _, s := range subjects {
		m.subjects[models.NormalizeCode(s.Code)] = s
	}
	return m
}

func (m *mockSubjectRepo) List(ctx context.Context) ([]models.Subject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSubjectRepo) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	if s, ok := m.subjects[models.NormalizeCode(code)]; ok {
		copy := s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) Upsert(ctx context.Context, subject *models.Subject) error {
	m.subjects[models.NormalizeCode(subject.Code)] = *subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, code string) error {
	code = models.NormalizeCode(code)
	if _, ok := m.subjects[code]; !ok {
		return sql.ErrNoRows
	}
	delete(m.subjects, code)
	return nil
}

// mockEnrollmentRepo keeps enrollments in insertion order and hands out deep copies.
type mockEnrollmentRepo struct {
	mu        sync.Mutex
	items     []models.Enrollment
	upsertErr error
}

func cloneEnrollment(e models.Enrollment) models.Enrollment {
	e.Subjects = append([]models.EnrolledSubject(nil), e.Subjects...)
	return e
}

func (m *mockEnrollmentRepo) List(ctx context.Context) ([]models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Enrollment, 0, len(m.items))
	for _, e := range m.items {
		out = append(out, cloneEnrollment(e))
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Enrollment, 0)
	for _, e := range m.items {
		if e.StudentID == studentID {
			out = append(out, cloneEnrollment(e))
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) Upsert(ctx context.Context, enrollment *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for i, e := range m.items {
		if e.StudentID == enrollment.StudentID && e.SameTerm(enrollment.YearLevel, enrollment.Semester) {
			m.items[i] = cloneEnrollment(*enrollment)
			return nil
		}
	}
	m.items = append(m.items, cloneEnrollment(*enrollment))
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, studentID, yearLevel, semester string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, e := range m.items {
		if e.StudentID != studentID || !e.SameTerm(yearLevel, semester) {
			kept = append(kept, e)
		}
	}
	m.items = kept
	return nil
}

func (m *mockEnrollmentRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, e := range m.items {
		if e.StudentID != studentID {
			kept = append(kept, e)
		}
	}
	m.items = kept
	return nil
}

// mockCacheRepo stores JSON payloads in memory.
type mockCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{entries: make(map[string][]byte)}
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = payload
	return nil
}

func (m *mockCacheRepo) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *mockCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func subjectFixture(code, year, semester string, units int, prereqs ...string) models.Subject {
	if prereqs == nil {
		prereqs = []string{}
	}
	return models.Subject{
		Code:          code,
		Name:          "Subject " + code,
		Units:         units,
		Department:    "General",
		YearLevel:     year,
		Semester:      semester,
		Prerequisites: prereqs,
	}
}

func studentFixture(id, year, semester string) models.Student {
	return models.Student{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     id + "@school.test",
		YearLevel: year,
		Semester:  semester,
	}
}
