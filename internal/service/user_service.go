package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
}

// UserService handles login account management.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns accounts sorted by username, without passwords.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]dto.UserView, *models.Pagination, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, storeError(err, "list users")
	}
	views := make([]dto.UserView, 0, len(users))
	for _, user := range users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		views = append(views, dto.UserView{Username: user.Username, Role: user.Role})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Username < views[j].Username })
	page, pagination := models.Paginate(views, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// Create adds a new account with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	} else if !isNotFound(err) {
		return nil, storeError(err, "check username uniqueness")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{Username: req.Username, Password: hash, Role: req.Role}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, storeError(err, "create user")
	}
	s.logger.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return &dto.UserView{Username: user.Username, Role: user.Role}, nil
}

// Delete removes an account. Callers cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, username string) error {
	if actor.Username != "" && actor.Username == username {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot delete your own account")
	}
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return lookupError(err, appErrors.ErrNotFound, "user")
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		return storeError(err, "delete user")
	}
	s.logger.Info("user deleted", zap.String("username", username), zap.String("actor", actor.Username))
	return nil
}
