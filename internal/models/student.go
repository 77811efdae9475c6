package models

import "strings"

// Student represents a learner registered in the institution. YearLevel and Semester
// record the student's active term.
type Student struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
	YearLevel string `db:"year_level" json:"yearLevel"`
	Semester  string `db:"semester" json:"semester"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	YearLevel string
	Semester  string
	Page      int
	PageSize  int
}

// StudentCreated is returned once after registration with the generated password.
type StudentCreated struct {
	Student         Student     `json:"student"`
	Username        string      `json:"username"`
	InitialPassword string      `json:"initial_password"`
	Enrollment      *Enrollment `json:"enrollment,omitempty"`
}
