package models

import "strings"

// Teacher represents an instructor record.
type Teacher struct {
	ID               string   `db:"id" json:"id"`
	FirstName        string   `db:"first_name" json:"firstName"`
	LastName         string   `db:"last_name" json:"lastName"`
	Email            string   `db:"email" json:"email"`
	Department       string   `db:"department" json:"department"`
	Position         string   `db:"position" json:"position"`
	AssignedSubjects []string `db:"-" json:"assignedSubjects"`
}

// FullName joins first and last name.
func (t Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Teaches reports whether the subject code is among the assigned subjects.
func (t Teacher) Teaches(code string) bool {
	for _, assigned := range t.AssignedSubjects {
		if strings.EqualFold(assigned, code) {
			return true
		}
	}
	return false
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
}

// TeacherCreated is returned once after registration with the generated password.
type TeacherCreated struct {
	Teacher         Teacher `json:"teacher"`
	Username        string  `json:"username"`
	InitialPassword string  `json:"initial_password"`
}
