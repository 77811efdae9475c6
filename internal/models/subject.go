package models

import "strings"

// Subject represents a catalogue entry. Code is the stable, case-insensitive key.
type Subject struct {
	Code          string   `db:"code" json:"code"`
	Name          string   `db:"name" json:"name"`
	Units         int      `db:"units" json:"units"`
	Department    string   `db:"department" json:"department"`
	YearLevel     string   `db:"year_level" json:"yearLevel"`
	Semester      string   `db:"semester" json:"semester"`
	Prerequisites []string `db:"-" json:"prerequisites"`
}

// NormalizeCode returns the canonical upper-case form of a subject code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Search     string
	Department string
	YearLevel  string
	Semester   string
	Page       int
	PageSize   int
}
