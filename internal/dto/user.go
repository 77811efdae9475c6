package dto

import "github.com/noah-isme/evaluation-system/internal/models"

// CreateUserRequest creates a login account directly, mainly for administrators.
type CreateUserRequest struct {
	Username string          `json:"username" validate:"required,alphanum"`
	Password string          `json:"password" validate:"required,min=6"`
	Role     models.UserRole `json:"role" validate:"required,oneof=Admin Teacher Student"`
}

// UserView is an account without its password.
type UserView struct {
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}
