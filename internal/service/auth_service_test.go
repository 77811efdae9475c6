package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

func newAuthFixture(users *mockUserRepo) *AuthService {
	students := newMockStudentRepo(studentFixture("1001", academic.FirstYear, academic.FirstSemester))
	teachers := newMockTeacherRepo(models.Teacher{ID: "T01", FirstName: "Grace", LastName: "Hopper"})
	return NewAuthService(users, students, teachers, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "evaluation-system",
	})
}

func TestAuthServiceLoginLegacyPassword(t *testing.T) {
	svc := newAuthFixture(newMockUserRepo(models.User{Username: "admin", Password: "admin123", Role: models.RoleAdmin}))

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123", Role: "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginHashedPasswordAndProfileName(t *testing.T) {
	hash, err := HashPassword("1001ABCD")
	require.NoError(t, err)
	svc := newAuthFixture(newMockUserRepo(models.User{Username: "1001", Password: hash, Role: models.RoleStudent}))

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "1001", Password: "1001ABCD", Role: "Student"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", res.User.FullName)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc := newAuthFixture(newMockUserRepo(models.User{Username: "T01", Password: "teach", Role: models.RoleTeacher}))

	cases := []struct {
		name   string
		req    models.LoginRequest
		target *appErrors.Error
	}{
		{name: "wrong password", req: models.LoginRequest{Username: "T01", Password: "nope", Role: "Teacher"}, target: appErrors.ErrInvalidCredentials},
		{name: "wrong role", req: models.LoginRequest{Username: "T01", Password: "teach", Role: "Admin"}, target: appErrors.ErrInvalidCredentials},
		{name: "unknown user", req: models.LoginRequest{Username: "ghost", Password: "teach", Role: "Teacher"}, target: appErrors.ErrInvalidCredentials},
		{name: "bad role", req: models.LoginRequest{Username: "T01", Password: "teach", Role: "Janitor"}, target: appErrors.ErrValidation},
		{name: "missing fields", req: models.LoginRequest{Username: "T01"}, target: appErrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.target), "got %v", err)
		})
	}
}

func TestAuthServiceChangePassword(t *testing.T) {
	users := newMockUserRepo(models.User{Username: "T01", Password: "teach1", Role: models.RoleTeacher})
	svc := newAuthFixture(users)

	err := svc.ChangePassword(context.Background(), "T01", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "brandnew"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.ChangePassword(context.Background(), "T01", models.ChangePasswordRequest{OldPassword: "teach1", NewPassword: "brandnew"}))
	stored := users.users["T01"].Password
	assert.NotEqual(t, "brandnew", stored)
	assert.True(t, PasswordMatches(stored, "brandnew"))

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "T01", Password: "brandnew", Role: "Teacher"})
	require.NoError(t, err)
}

func TestAuthServiceResetPassword(t *testing.T) {
	users := newMockUserRepo(models.User{Username: "admin", Password: "admin123", Role: models.RoleAdmin})
	svc := newAuthFixture(users)

	assert.True(t, errors.Is(svc.ResetPassword(context.Background(), "admin", "123"), appErrors.ErrValidation))
	assert.True(t, errors.Is(svc.ResetPassword(context.Background(), "ghost", "123456"), appErrors.ErrNotFound))
	require.NoError(t, svc.ResetPassword(context.Background(), "admin", "123456"))
	assert.True(t, PasswordMatches(users.users["admin"].Password, "123456"))
}

func TestAuthServiceMe(t *testing.T) {
	svc := newAuthFixture(newMockUserRepo(models.User{Username: "T01", Password: "teach", Role: models.RoleTeacher}))

	info, err := svc.Me(context.Background(), models.Actor{Username: "T01", Role: models.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", info.FullName)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	users := newMockUserRepo(models.User{Username: "admin", Password: "admin123", Role: models.RoleAdmin})
	issuer := newAuthFixture(users)
	res, err := issuer.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123", Role: "Admin"})
	require.NoError(t, err)

	other := NewAuthService(users, nil, nil, nil, nil, AuthConfig{AccessTokenSecret: "different"})
	_, err = other.ValidateToken(res.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestInitialPasswordFormat(t *testing.T) {
	password, err := initialPassword("1001")
	require.NoError(t, err)
	require.Len(t, password, 8)
	assert.Equal(t, "1001", password[:4])
	for _, r := range password[4:] {
		assert.True(t, r >= 'A' && r <= 'Z')
	}
}
