package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

var studentIDPattern = regexp.MustCompile(`^\d{4}$`)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Upsert(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentEnrollmentRepository interface {
	Upsert(ctx context.Context, enrollment *models.Enrollment) error
	DeleteByStudent(ctx context.Context, studentID string) error
}

type accountRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
}

type catalogueReader interface {
	List(ctx context.Context) ([]models.Subject, error)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	enrollments studentEnrollmentRepository
	users       accountRepository
	subjects    catalogueReader
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, enrollments studentEnrollmentRepository, users accountRepository, subjects catalogueReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:        repo,
		enrollments: enrollments,
		users:       users,
		subjects:    subjects,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// List returns students matching the filter and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, storeError(err, "list students")
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Student, 0, len(students))
	for _, student := range students {
		if filter.YearLevel != "" && !strings.EqualFold(student.YearLevel, filter.YearLevel) {
			continue
		}
		if filter.Semester != "" && !strings.EqualFold(student.Semester, filter.Semester) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(student.ID+" "+student.FullName()+" "+student.Email), search) {
			continue
		}
		matched = append(matched, student)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	page, pagination := models.Paginate(matched, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrStudentNotFound, "student")
	}
	return student, nil
}

// Create registers a student, their login account and the initial enrollment for the
// first term. The generated password is only returned here.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.StudentCreated, error) {
	req.ID = strings.TrimSpace(req.ID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !studentIDPattern.MatchString(req.ID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id must be exactly four digits")
	}

	if _, err := s.repo.FindByID(ctx, req.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student id already exists")
	} else if !isNotFound(err) {
		return nil, storeError(err, "check student id")
	}
	if _, err := s.users.FindByUsername(ctx, req.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	} else if !isNotFound(err) {
		return nil, storeError(err, "check username")
	}

	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, storeError(err, "load subjects")
	}

	password, err := initialPassword(req.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		ID:        req.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		YearLevel: academic.InitialTerm.YearLevel,
		Semester:  academic.InitialTerm.Semester,
	}
	if err := s.repo.Upsert(ctx, student); err != nil {
		return nil, storeError(err, "create student")
	}
	if err := s.users.Upsert(ctx, &models.User{Username: student.ID, Password: hash, Role: models.RoleStudent}); err != nil {
		s.discardStudent(ctx, student.ID, false)
		return nil, storeError(err, "create student account")
	}

	result := &models.StudentCreated{Student: *student, Username: student.ID, InitialPassword: password}
	scheduled := academic.ScheduledFor(academic.NewCatalogue(subjects), academic.InitialTerm)
	if len(scheduled) == 0 {
		s.logger.Warn("no subjects defined for the first term; initial enrollment skipped", zap.String("student_id", student.ID))
		return result, nil
	}
	enrollment := academic.BuildEnrollment(student.ID, academic.InitialTerm, scheduled)
	if err := s.enrollments.Upsert(ctx, &enrollment); err != nil {
		s.discardStudent(ctx, student.ID, true)
		return nil, storeError(err, "create initial enrollment")
	}
	result.Enrollment = &enrollment

	s.logger.Info("student created", zap.String("student_id", student.ID), zap.Int("subjects", len(enrollment.Subjects)))
	return result, nil
}

// discardStudent removes a partially created student after a later write failed.
func (s *StudentService) discardStudent(ctx context.Context, id string, withAccount bool) {
	if withAccount {
		if err := s.users.Delete(ctx, id); err != nil && !isNotFound(err) {
			s.logger.Error("failed to remove account of incomplete student", zap.String("student_id", id), zap.Error(err))
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil && !isNotFound(err) {
		s.logger.Error("failed to remove incomplete student", zap.String("student_id", id), zap.Error(err))
	}
}

// Update replaces a student's attributes, including an administrative term correction.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	term, err := academic.ParseTerm(req.YearLevel, req.Semester)
	if err != nil {
		return nil, err
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = strings.TrimSpace(req.Email)
	student.YearLevel = term.YearLevel
	student.Semester = term.Semester
	if err := s.repo.Upsert(ctx, student); err != nil {
		return nil, storeError(err, "update student")
	}
	s.cache.InvalidateStudent(ctx, id)
	return student, nil
}

// UpdateProfile lets a student edit their own name and email.
func (s *StudentService) UpdateProfile(ctx context.Context, id string, req dto.UpdateProfileRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = strings.TrimSpace(req.Email)
	if err := s.repo.Upsert(ctx, student); err != nil {
		return nil, storeError(err, "update profile")
	}
	return student, nil
}

// Delete removes the student together with their enrollments and login account.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.enrollments.DeleteByStudent(ctx, id); err != nil {
		return storeError(err, "delete enrollments")
	}
	if err := s.users.Delete(ctx, id); err != nil && !isNotFound(err) {
		return storeError(err, "delete student account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, appErrors.ErrStudentNotFound, "student")
	}
	s.cache.InvalidateStudent(ctx, id)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}
