package academic

import (
	"encoding/json"
	"sort"

	"github.com/noah-isme/evaluation-system/internal/models"
)

// PassingGradeCeiling is the worst grade that still counts as passed.
const PassingGradeCeiling = 3.0

// History is the projection of a student's graded enrollments.
type History struct {
	StudentID string `json:"studentId"`
	// Passed and Failed are disjoint; a code passed in any enrollment is never failed.
	Passed  CodeSet `json:"passed"`
	Failed  CodeSet `json:"failed"`
	Current Term    `json:"current"`
	// Unknown lists graded codes that are missing from the catalogue.
	Unknown []string `json:"unknown,omitempty"`
}

// CodeSet is a set of normalised subject codes.
type CodeSet map[string]struct{}

// NewCodeSet builds a set from codes, normalising each one.
func NewCodeSet(codes ...string) CodeSet {
	set := make(CodeSet, len(codes))
	for _, code := range codes {
		set.Add(code)
	}
	return set
}

// Add inserts the normalised code.
func (s CodeSet) Add(code string) {
	s[models.NormalizeCode(code)] = struct{}{}
}

// Has reports whether the code is in the set.
func (s CodeSet) Has(code string) bool {
	_, ok := s[models.NormalizeCode(code)]
	return ok
}

// Sorted returns the codes in ascending order.
func (s CodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for code := range s {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the set as a sorted array.
func (s CodeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON reads a set from an array of codes.
func (s *CodeSet) UnmarshalJSON(data []byte) error {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	*s = NewCodeSet(codes...)
	return nil
}

// Catalogue indexes subjects by normalised code.
type Catalogue map[string]models.Subject

// NewCatalogue indexes the given subjects. Later duplicates replace earlier ones.
func NewCatalogue(subjects []models.Subject) Catalogue {
	catalogue := make(Catalogue, len(subjects))
	for _, subject := range subjects {
		catalogue[models.NormalizeCode(subject.Code)] = subject
	}
	return catalogue
}

// Lookup returns the subject with the given code.
func (c Catalogue) Lookup(code string) (models.Subject, bool) {
	subject, ok := c[models.NormalizeCode(code)]
	return subject, ok
}

// Sorted returns every subject ordered by code.
func (c Catalogue) Sorted() []models.Subject {
	out := make([]models.Subject, 0, len(c))
	for _, subject := range c {
		out = append(out, subject)
	}
	sortSubjects(out)
	return out
}

// IsPassing reports whether a recorded grade counts as passed.
func IsPassing(grade float64) bool {
	return grade > 0 && grade <= PassingGradeCeiling
}

// IsFailing reports whether a recorded grade counts as failed.
func IsFailing(grade float64) bool {
	return grade > PassingGradeCeiling
}

// ProjectHistory classifies every graded row across the student's enrollments. The
// current term is taken from the student record, not from the enrollments.
func ProjectHistory(student models.Student, enrollments []models.Enrollment, catalogue Catalogue) History {
	history := History{
		StudentID: student.ID,
		Passed:    CodeSet{},
		Failed:    CodeSet{},
		Current:   Term{YearLevel: student.YearLevel, Semester: student.Semester},
	}
	if year, ok := CanonicalYearLevel(student.YearLevel); ok {
		history.Current.YearLevel = year
	}
	if sem, ok := CanonicalSemester(student.Semester); ok {
		history.Current.Semester = sem
	}

	unknown := CodeSet{}
	for _, enrollment := range enrollments {
		for _, row := range enrollment.Subjects {
			if row.Grade == 0 {
				continue
			}
			code := models.NormalizeCode(row.Code)
			if _, ok := catalogue[code]; !ok {
				unknown.Add(code)
				continue
			}
			switch {
			case IsPassing(row.Grade):
				history.Passed.Add(code)
			case IsFailing(row.Grade):
				history.Failed.Add(code)
			}
		}
	}

	for code := range history.Passed {
		delete(history.Failed, code)
	}
	if len(unknown) > 0 {
		history.Unknown = unknown.Sorted()
	}
	return history
}
