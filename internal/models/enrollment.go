package models

import "strings"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// EnrollmentStatusEnrolled is the status of every committed enrollment.
const EnrollmentStatusEnrolled EnrollmentStatus = "Enrolled"

// EnrolledSubject is a subject row embedded in an enrollment. Grade 0 means no grade yet.
type EnrolledSubject struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Units int     `json:"units"`
	Grade float64 `json:"grade"`
}

// Enrollment captures a student's registration for one term.
type Enrollment struct {
	StudentID string            `db:"student_id" json:"studentId"`
	YearLevel string            `db:"year_level" json:"yearLevel"`
	Semester  string            `db:"semester" json:"semester"`
	Status    EnrollmentStatus  `db:"status" json:"status"`
	Subjects  []EnrolledSubject `db:"-" json:"subjects"`
}

// SameTerm reports whether the enrollment belongs to the given term labels.
func (e Enrollment) SameTerm(yearLevel, semester string) bool {
	return strings.EqualFold(e.YearLevel, yearLevel) && strings.EqualFold(e.Semester, semester)
}

// Units sums the units of every enrolled subject.
func (e Enrollment) Units() int {
	total := 0
	for _, s := range e.Subjects {
		total += s.Units
	}
	return total
}
