package models

import "strings"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleTeacher UserRole = "Teacher"
	RoleStudent UserRole = "Student"
)

// ParseRole resolves a role label case-insensitively.
func ParseRole(value string) (UserRole, bool) {
	for _, role := range []UserRole{RoleAdmin, RoleTeacher, RoleStudent} {
		if strings.EqualFold(string(role), strings.TrimSpace(value)) {
			return role, true
		}
	}
	return "", false
}

// User is a login account. Students and teachers use their id as username.
type User struct {
	Username string   `db:"username" json:"username"`
	Password string   `db:"password" json:"password"`
	Role     UserRole `db:"role" json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// Paginate slices items for the requested page and returns the metadata. Page and size
// below one fall back to the first page and twenty items.
func Paginate[T any](items []T, page, pageSize int) ([]T, *Pagination) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	meta := &Pagination{Page: page, PageSize: pageSize, TotalCount: len(items)}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

// UserFilter narrows account listings.
type UserFilter struct {
	Role     UserRole
	Page     int
	PageSize int
}
