package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

var teacherIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Upsert(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type subjectLookup interface {
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
}

// TeacherService manages teacher records and their subject assignments.
type TeacherService struct {
	repo      teacherRepository
	users     accountRepository
	subjects  subjectLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs TeacherService.
func NewTeacherService(repo teacherRepository, users accountRepository, subjects subjectLookup, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, users: users, subjects: subjects, validator: validate, logger: logger}
}

// List returns teachers matching the filter and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, storeError(err, "list teachers")
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		if filter.Department != "" && !strings.EqualFold(teacher.Department, filter.Department) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(teacher.ID+" "+teacher.FullName()+" "+teacher.Email), search) {
			continue
		}
		matched = append(matched, teacher)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	page, pagination := models.Paginate(matched, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "teacher")
	}
	return teacher, nil
}

// Create registers a teacher and their login account.
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.TeacherCreated, error) {
	req.ID = strings.TrimSpace(req.ID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if !teacherIDPattern.MatchString(req.ID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id must be alphanumeric")
	}
	if _, err := s.repo.FindByID(ctx, req.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher id already exists")
	} else if !isNotFound(err) {
		return nil, storeError(err, "check teacher id")
	}
	if _, err := s.users.FindByUsername(ctx, req.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	} else if !isNotFound(err) {
		return nil, storeError(err, "check username")
	}
	assigned, err := s.resolveSubjects(ctx, req.AssignedSubjects)
	if err != nil {
		return nil, err
	}

	password, err := initialPassword(req.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	teacher := &models.Teacher{
		ID:               req.ID,
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            strings.TrimSpace(req.Email),
		Department:       strings.TrimSpace(req.Department),
		Position:         strings.TrimSpace(req.Position),
		AssignedSubjects: assigned,
	}
	if err := s.repo.Upsert(ctx, teacher); err != nil {
		return nil, storeError(err, "create teacher")
	}
	if err := s.users.Upsert(ctx, &models.User{Username: teacher.ID, Password: hash, Role: models.RoleTeacher}); err != nil {
		return nil, storeError(err, "create teacher account")
	}
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID), zap.Strings("subjects", assigned))
	return &models.TeacherCreated{Teacher: *teacher, Username: teacher.ID, InitialPassword: password}, nil
}

// Update replaces a teacher's attributes and subject assignments.
func (s *TeacherService) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	assigned, err := s.resolveSubjects(ctx, req.AssignedSubjects)
	if err != nil {
		return nil, err
	}
	teacher.FirstName = strings.TrimSpace(req.FirstName)
	teacher.LastName = strings.TrimSpace(req.LastName)
	teacher.Email = strings.TrimSpace(req.Email)
	teacher.Department = strings.TrimSpace(req.Department)
	teacher.Position = strings.TrimSpace(req.Position)
	teacher.AssignedSubjects = assigned
	if err := s.repo.Upsert(ctx, teacher); err != nil {
		return nil, storeError(err, "update teacher")
	}
	return teacher, nil
}

// UpdateProfile lets a teacher edit their own name and email.
func (s *TeacherService) UpdateProfile(ctx context.Context, id string, req dto.UpdateProfileRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	teacher.FirstName = strings.TrimSpace(req.FirstName)
	teacher.LastName = strings.TrimSpace(req.LastName)
	teacher.Email = strings.TrimSpace(req.Email)
	if err := s.repo.Upsert(ctx, teacher); err != nil {
		return nil, storeError(err, "update profile")
	}
	return teacher, nil
}

// Delete removes the teacher and their login account.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil && !isNotFound(err) {
		return storeError(err, "delete teacher account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, appErrors.ErrNotFound, "teacher")
	}
	s.logger.Info("teacher deleted", zap.String("teacher_id", id))
	return nil
}

// resolveSubjects normalises and de-duplicates codes, requiring each to exist.
func (s *TeacherService) resolveSubjects(ctx context.Context, codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, raw := range codes {
		code := models.NormalizeCode(raw)
		if _, ok := seen[code]; ok {
			continue
		}
		if _, err := s.subjects.FindByCode(ctx, code); err != nil {
			return nil, lookupError(err, appErrors.ErrSubjectNotFound, "subject "+code)
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
