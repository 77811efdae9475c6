package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

type authStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type authTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	students  authStudentRepository
	teachers  authTeacherRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance. The profile repositories are only
// used to resolve display names and may be nil.
func NewAuthService(repo authUserRepository, students authStudentRepository, teachers authTeacherRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{repo: repo, students: students, teachers: teachers, validator: validate, logger: logger, config: config}
}

// Login authenticates a user for the requested role and returns an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be Admin, Teacher or Student")
	}

	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, storeError(err, "fetch user")
	}
	if user.Role != role || !PasswordMatches(user.Password, req.Password) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("user logged in", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    time.Now().UTC(),
		User:        s.userInfo(ctx, user),
	}, nil
}

// Me describes the authenticated user.
func (s *AuthService) Me(ctx context.Context, actor models.Actor) (*models.UserInfo, error) {
	user, err := s.repo.FindByUsername(ctx, actor.Username)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "user")
	}
	info := s.userInfo(ctx, user)
	return &info, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, username string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return lookupError(err, appErrors.ErrNotFound, "user")
	}
	if !PasswordMatches(user.Password, req.OldPassword) {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}
	return s.setPassword(ctx, user, req.NewPassword)
}

// ResetPassword sets a new password without checking the old one.
func (s *AuthService) ResetPassword(ctx context.Context, username, password string) error {
	if len(password) < 6 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return lookupError(err, appErrors.ErrNotFound, "user")
	}
	return s.setPassword(ctx, user, password)
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user.Password = hash
	if err := s.repo.Upsert(ctx, user); err != nil {
		return storeError(err, "update password")
	}
	s.logger.Info("password changed", zap.String("username", user.Username))
	return nil
}

func (s *AuthService) userInfo(ctx context.Context, user *models.User) models.UserInfo {
	info := models.UserInfo{Username: user.Username, Role: user.Role}
	switch {
	case user.Role == models.RoleStudent && s.students != nil:
		student, err := s.students.FindByID(ctx, user.Username)
		if err != nil {
			s.logger.Debug("student profile lookup failed", zap.String("username", user.Username), zap.Error(err))
			break
		}
		info.FullName = student.FullName()
	case user.Role == models.RoleTeacher && s.teachers != nil:
		teacher, err := s.teachers.FindByID(ctx, user.Username)
		if err != nil {
			s.logger.Debug("teacher profile lookup failed", zap.String("username", user.Username), zap.Error(err))
			break
		}
		info.FullName = teacher.FullName()
	}
	return info
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   user.Username,
		Role:     user.Role,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

// HashPassword returns the bcrypt hash stored for new passwords.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordMatches checks a candidate against a stored password. Stored values that are
// not bcrypt hashes come from legacy data files and are compared verbatim.
func PasswordMatches(stored, candidate string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func isBcryptHash(value string) bool {
	if len(value) != 60 {
		return false
	}
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

const initialPasswordLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// initialPassword builds the first password of a new account: the id followed by four
// random upper-case letters.
func initialPassword(id string) (string, error) {
	var b strings.Builder
	b.WriteString(id)
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(initialPasswordLetters))))
		if err != nil {
			return "", err
		}
		b.WriteByte(initialPasswordLetters[n.Int64()])
	}
	return b.String(), nil
}
