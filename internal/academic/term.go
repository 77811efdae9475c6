package academic

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

// Year level labels.
const (
	FirstYear  = "1st Year"
	SecondYear = "2nd Year"
	ThirdYear  = "3rd Year"
	FourthYear = "4th Year"
)

// Semester labels.
const (
	FirstSemester  = "1st Semester"
	SecondSemester = "2nd Semester"
	Summer         = "Summer"
)

var (
	yearLevels = []string{FirstYear, SecondYear, ThirdYear, FourthYear}
	semesters  = []string{FirstSemester, SecondSemester, Summer}
)

// Term is a (year level, semester) pair from the academic calendar.
type Term struct {
	YearLevel string `json:"yearLevel"`
	Semester  string `json:"semester"`
}

// InitialTerm is the term every new student starts in.
var InitialTerm = Term{YearLevel: FirstYear, Semester: FirstSemester}

func (t Term) String() string {
	return t.YearLevel + " / " + t.Semester
}

// Equal compares two terms ignoring label case.
func (t Term) Equal(other Term) bool {
	return strings.EqualFold(t.YearLevel, other.YearLevel) && strings.EqualFold(t.Semester, other.Semester)
}

// YearLevels returns the recognised year level labels in calendar order.
func YearLevels() []string {
	return append([]string(nil), yearLevels...)
}

// Semesters returns the recognised semester labels.
func Semesters() []string {
	return append([]string(nil), semesters...)
}

// CanonicalYearLevel resolves a year level label case-insensitively.
func CanonicalYearLevel(value string) (string, bool) {
	return canonical(yearLevels, value)
}

// CanonicalSemester resolves a semester label case-insensitively.
func CanonicalSemester(value string) (string, bool) {
	return canonical(semesters, value)
}

// ParseTerm builds a Term from raw labels, failing with INVALID_TERM on unknown values.
func ParseTerm(yearLevel, semester string) (Term, error) {
	year, ok := CanonicalYearLevel(yearLevel)
	if !ok {
		return Term{}, invalidTerm(yearLevel, semester)
	}
	sem, ok := CanonicalSemester(semester)
	if !ok {
		return Term{}, invalidTerm(yearLevel, semester)
	}
	return Term{YearLevel: year, Semester: sem}, nil
}

// NextTerm returns the term following current. The boolean is false when current is
// the final term of the curriculum, which is graduation rather than an error.
func NextTerm(current Term) (Term, bool, error) {
	term, err := ParseTerm(current.YearLevel, current.Semester)
	if err != nil {
		return Term{}, false, err
	}
	year := yearIndex(term.YearLevel)
	last := len(yearLevels) - 1

	switch term.Semester {
	case FirstSemester:
		return Term{YearLevel: term.YearLevel, Semester: SecondSemester}, true, nil
	case SecondSemester:
		if year == last {
			return Term{}, false, nil
		}
		return Term{YearLevel: yearLevels[year+1], Semester: FirstSemester}, true, nil
	default:
		// Summer rolls into the next year; there is nothing after a final-year summer.
		if year == last {
			return Term{}, false, invalidTerm(term.YearLevel, term.Semester)
		}
		return Term{YearLevel: yearLevels[year+1], Semester: FirstSemester}, true, nil
	}
}

func yearIndex(label string) int {
	for i, y := range yearLevels {
		if y == label {
			return i
		}
	}
	return -1
}

func canonical(labels []string, value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, label := range labels {
		if strings.EqualFold(label, value) {
			return label, true
		}
	}
	return "", false
}

func invalidTerm(yearLevel, semester string) error {
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrInvalidTerm, fmt.Sprintf("unrecognised term %q / %q", yearLevel, semester)),
		map[string]interface{}{"yearLevel": yearLevel, "semester": semester},
	)
}
