package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/evaluation-system/internal/models"
	"github.com/noah-isme/evaluation-system/pkg/config"
	"github.com/noah-isme/evaluation-system/pkg/database"
	"github.com/noah-isme/evaluation-system/pkg/storage"
)

// UserStore persists login accounts.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
}

// StudentStore persists students.
type StudentStore interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Upsert(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// TeacherStore persists teachers.
type TeacherStore interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Upsert(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

// SubjectStore persists the subject catalogue.
type SubjectStore interface {
	List(ctx context.Context) ([]models.Subject, error)
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
	Upsert(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, code string) error
}

// EnrollmentStore persists enrollments in insertion order.
type EnrollmentStore interface {
	List(ctx context.Context) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	Upsert(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, yearLevel, semester string) error
	DeleteByStudent(ctx context.Context, studentID string) error
}

// Set bundles one backend's repositories.
type Set struct {
	Users       UserStore
	Students    StudentStore
	Teachers    TeacherStore
	Subjects    SubjectStore
	Enrollments EnrollmentStore
}

// NewFileSet builds repositories backed by JSON documents in the storage directory.
func NewFileSet(store *storage.LocalStorage) Set {
	return Set{
		Users:       NewFileUserRepository(store),
		Students:    NewFileStudentRepository(store),
		Teachers:    NewFileTeacherRepository(store),
		Subjects:    NewFileSubjectRepository(store),
		Enrollments: NewFileEnrollmentRepository(store),
	}
}

// NewPostgresSet builds repositories backed by PostgreSQL.
func NewPostgresSet(db *sqlx.DB) Set {
	return Set{
		Users:       NewUserRepository(db),
		Students:    NewStudentRepository(db),
		Teachers:    NewTeacherRepository(db),
		Subjects:    NewSubjectRepository(db),
		Enrollments: NewEnrollmentRepository(db),
	}
}

// Backend is an opened record store together with its lifecycle hooks.
type Backend struct {
	Set
	Driver string
	ping   func(ctx context.Context) error
	close  func() error
}

// Ping reports whether the backend can serve requests.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases backend resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects the configured record store. The postgres driver creates missing tables.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case "", config.StoreDriverFile:
		store, err := storage.NewLocalStorage(cfg.Store.DataDir)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Set:    NewFileSet(store),
			Driver: config.StoreDriverFile,
			ping: func(context.Context) error {
				_, err := os.Stat(store.Path("."))
				return err
			},
		}, nil
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Backend{Set: NewPostgresSet(db), Driver: config.StoreDriverPostgres, ping: db.PingContext, close: db.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
