package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Upsert(ctx context.Context, student *models.Student) error
}

type enrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	Upsert(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, yearLevel, semester string) error
}

// EnrollmentConfig tunes enrollment limits.
type EnrollmentConfig struct {
	MaxUnits int
}

// EnrollmentService projects academic history and commits term enrollments.
type EnrollmentService struct {
	students    enrollmentStudentRepository
	enrollments enrollmentRepository
	subjects    catalogueReader
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         EnrollmentConfig

	// commitMu serialises commits so the read-validate-write sequence is exclusive.
	commitMu sync.Mutex
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(students enrollmentStudentRepository, enrollments enrollmentRepository, subjects catalogueReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg EnrollmentConfig) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUnits <= 0 {
		cfg.MaxUnits = academic.MaxUnits
	}
	return &EnrollmentService{
		students:    students,
		enrollments: enrollments,
		subjects:    subjects,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// snapshot is the state one engine operation reads.
type snapshot struct {
	student     models.Student
	enrollments []models.Enrollment
	catalogue   academic.Catalogue
	history     academic.History
}

func (s *EnrollmentService) load(ctx context.Context, studentID string) (*snapshot, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveStoreOperation("snapshot", time.Since(start)) }()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrStudentNotFound, "student")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "load enrollments")
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, storeError(err, "load subjects")
	}
	catalogue := academic.NewCatalogue(subjects)
	history := academic.ProjectHistory(*student, enrollments, catalogue)
	if len(history.Unknown) > 0 {
		s.logger.Warn("graded subjects missing from catalogue", zap.String("student_id", studentID), zap.Strings("codes", history.Unknown))
	}
	return &snapshot{student: *student, enrollments: enrollments, catalogue: catalogue, history: history}, nil
}

// ProjectHistory returns the passed and failed subject sets and the active term.
func (s *EnrollmentService) ProjectHistory(ctx context.Context, studentID string) (*academic.History, error) {
	snap, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &snap.history, nil
}

// NextTerm resolves the term following the student's active term.
func (s *EnrollmentService) NextTerm(ctx context.Context, studentID string) (*dto.NextTermResponse, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrStudentNotFound, "student")
	}
	current := academic.Term{YearLevel: student.YearLevel, Semester: student.Semester}
	next, ok, err := academic.NextTerm(current)
	if err != nil {
		return nil, err
	}
	if parsed, perr := academic.ParseTerm(current.YearLevel, current.Semester); perr == nil {
		current = parsed
	}
	resp := &dto.NextTermResponse{Current: current, Graduated: !ok}
	if ok {
		resp.Next = &next
	}
	return resp, nil
}

// Partition returns the candidate subjects for the student's next term. A graduated
// student yields GRADUATED.
func (s *EnrollmentService) Partition(ctx context.Context, studentID string) (*dto.EnrollmentOptions, error) {
	options, _, err := s.Options(ctx, studentID)
	return options, err
}

// Options behaves like Partition and also reports whether the result came from cache.
func (s *EnrollmentService) Options(ctx context.Context, studentID string) (*dto.EnrollmentOptions, bool, error) {
	var cached dto.EnrollmentOptions
	if hit, _ := s.cache.Get(ctx, EligibilityKey(studentID), &cached); hit {
		return &cached, true, nil
	}

	snap, err := s.load(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	options, err := s.partition(snap)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, EligibilityKey(studentID), options, 0)
	return options, false, nil
}

func (s *EnrollmentService) partition(snap *snapshot) (*dto.EnrollmentOptions, error) {
	next, ok, err := academic.NextTerm(snap.history.Current)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrGraduated, "")
	}
	partition := academic.PartitionCandidates(snap.history, next, snap.catalogue)
	return &dto.EnrollmentOptions{
		StudentID:  snap.student.ID,
		Current:    snap.history.Current,
		Next:       &next,
		MaxUnits:   s.cfg.MaxUnits,
		Mandatory:  partition.Mandatory,
		Eligible:   partition.Eligible,
		Ineligible: partition.Ineligible,
	}, nil
}

// Commit validates the selection against a fresh partition, writes the enrollment and
// advances the student to the next term. Nothing is written when validation fails.
func (s *EnrollmentService) Commit(ctx context.Context, studentID string, req dto.CommitEnrollmentRequest) (enrollment *models.Enrollment, err error) {
	defer func() { s.metrics.RecordEnrollmentCommit(err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	snap, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	options, err := s.partition(snap)
	if err != nil {
		return nil, err
	}
	selected, err := academic.ValidateSelection(options.Partition(), req.Codes, s.cfg.MaxUnits)
	if err != nil {
		return nil, err
	}

	current, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrStudentNotFound, "student")
	}
	if !snap.history.Current.Equal(academic.Term{YearLevel: current.YearLevel, Semester: current.Semester}) {
		return nil, appErrors.Clone(appErrors.ErrNothingChanged, "student term changed; reload enrollment options")
	}

	next := *options.Next
	built := academic.BuildEnrollment(studentID, next, selected)
	start := time.Now()
	if err := s.enrollments.Upsert(ctx, &built); err != nil {
		return nil, storeError(err, "save enrollment")
	}
	current.YearLevel = next.YearLevel
	current.Semester = next.Semester
	if err := s.students.Upsert(ctx, current); err != nil {
		s.restoreEnrollment(ctx, snap.enrollments, built)
		return nil, storeError(err, "advance student term")
	}
	s.metrics.ObserveStoreOperation("commit", time.Since(start))
	s.cache.InvalidateStudent(ctx, studentID)

	s.logger.Info("enrollment committed",
		zap.String("student_id", studentID),
		zap.String("term", next.String()),
		zap.Int("subjects", len(built.Subjects)),
		zap.Int("units", built.Units()),
	)
	return &built, nil
}

// restoreEnrollment undoes a saved enrollment after the student update failed: the
// previous enrollment for the term is written back, or the new one is removed.
func (s *EnrollmentService) restoreEnrollment(ctx context.Context, previous []models.Enrollment, built models.Enrollment) {
	var err error
	restored := false
	for i := range previous {
		if previous[i].SameTerm(built.YearLevel, built.Semester) {
			err = s.enrollments.Upsert(ctx, &previous[i])
			restored = true
			break
		}
	}
	if !restored {
		err = s.enrollments.Delete(ctx, built.StudentID, built.YearLevel, built.Semester)
	}
	if err != nil {
		s.logger.Error("failed to roll back enrollment",
			zap.String("student_id", built.StudentID),
			zap.String("term", built.YearLevel+" / "+built.Semester),
			zap.Error(err),
		)
	}
}
