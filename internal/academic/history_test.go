package academic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluation-system/internal/models"
)

func subject(code, year, semester string, units int, prereqs ...string) models.Subject {
	return models.Subject{
		Code:          code,
		Name:          "Subject " + code,
		Units:         units,
		YearLevel:     year,
		Semester:      semester,
		Prerequisites: prereqs,
	}
}

func graded(year, semester string, grades map[string]float64) models.Enrollment {
	rows := make([]models.EnrolledSubject, 0, len(grades))
	for code, grade := range grades {
		rows = append(rows, models.EnrolledSubject{Code: code, Units: 3, Grade: grade})
	}
	return models.Enrollment{StudentID: "1001", YearLevel: year, Semester: semester, Status: models.EnrollmentStatusEnrolled, Subjects: rows}
}

func TestProjectHistoryClassifiesGrades(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("A101", FirstYear, FirstSemester, 3),
		subject("A102", FirstYear, FirstSemester, 3),
		subject("A103", FirstYear, FirstSemester, 3),
		subject("A104", FirstYear, FirstSemester, 3),
	})
	student := models.Student{ID: "1001", YearLevel: "1st year", Semester: "1st semester"}
	enrollments := []models.Enrollment{
		graded(FirstYear, FirstSemester, map[string]float64{"a101": 3.0, "A102": 3.25, "A103": 0, "A104": 1.0, "Z999": 2.0}),
	}

	history := ProjectHistory(student, enrollments, catalogue)

	assert.Equal(t, []string{"A101", "A104"}, history.Passed.Sorted())
	assert.Equal(t, []string{"A102"}, history.Failed.Sorted())
	assert.Equal(t, []string{"Z999"}, history.Unknown)
	assert.Equal(t, Term{FirstYear, FirstSemester}, history.Current)
}

func TestProjectHistoryPassedTakesPrecedence(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{subject("A102", FirstYear, SecondSemester, 3)})
	student := models.Student{ID: "1001", YearLevel: SecondYear, Semester: SecondSemester}
	enrollments := []models.Enrollment{
		graded(FirstYear, SecondSemester, map[string]float64{"A102": 4.0}),
		graded(SecondYear, SecondSemester, map[string]float64{"A102": 2.5}),
	}

	history := ProjectHistory(student, enrollments, catalogue)

	assert.True(t, history.Passed.Has("a102"))
	assert.False(t, history.Failed.Has("A102"))
}

func TestProjectHistorySetsAreDisjoint(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("X1", FirstYear, FirstSemester, 3),
		subject("X2", FirstYear, FirstSemester, 3),
		subject("X3", FirstYear, FirstSemester, 3),
	})
	enrollments := []models.Enrollment{
		graded(FirstYear, FirstSemester, map[string]float64{"X1": 5.0, "X2": 2.0, "X3": 4.0}),
		graded(FirstYear, SecondSemester, map[string]float64{"X1": 1.5, "X2": 4.5}),
	}

	history := ProjectHistory(models.Student{ID: "1001"}, enrollments, catalogue)

	for code := range history.Passed {
		assert.False(t, history.Failed.Has(code), code)
	}
	assert.Equal(t, []string{"X1", "X2"}, history.Passed.Sorted())
	assert.Equal(t, []string{"X3"}, history.Failed.Sorted())
}

func TestCodeSetJSON(t *testing.T) {
	raw, err := json.Marshal(NewCodeSet("b2", "A1"))
	require.NoError(t, err)
	assert.JSONEq(t, `["A1","B2"]`, string(raw))

	var decoded CodeSet
	require.NoError(t, json.Unmarshal([]byte(`["c3","a1"]`), &decoded))
	assert.Equal(t, []string{"A1", "C3"}, decoded.Sorted())
}
