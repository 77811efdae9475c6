package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluation-system/internal/models"
)

func codes(subjects []models.Subject) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, s.Code)
	}
	return out
}

func ineligibleCodes(entries []Ineligible) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Subject.Code)
	}
	return out
}

func TestPartitionFreshStudent(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("A101", FirstYear, FirstSemester, 3),
		subject("A102", FirstYear, FirstSemester, 3, "A101"),
		subject("B101", FirstYear, SecondSemester, 3),
		subject("B102", FirstYear, SecondSemester, 3, "A101"),
		subject("B103", FirstYear, SecondSemester, 3, "A102"),
	})
	student := models.Student{ID: "1001", YearLevel: FirstYear, Semester: FirstSemester}
	initial := BuildEnrollment(student.ID, InitialTerm, ScheduledFor(catalogue, InitialTerm))
	require.Len(t, initial.Subjects, 2)

	history := ProjectHistory(student, []models.Enrollment{initial}, catalogue)
	next, ok, err := NextTerm(history.Current)
	require.NoError(t, err)
	require.True(t, ok)

	partition := PartitionCandidates(history, next, catalogue)

	assert.Empty(t, partition.Mandatory)
	assert.Equal(t, []string{"B101"}, codes(partition.Eligible))
	assert.Equal(t, []string{"B102", "B103"}, ineligibleCodes(partition.Ineligible))
	assert.Equal(t, "missing: A101", partition.Ineligible[0].Reason)
	assert.Equal(t, "missing: A102", partition.Ineligible[1].Reason)
}

func TestPartitionPassedOneFailedOne(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("A101", FirstYear, FirstSemester, 3),
		subject("A102", FirstYear, SecondSemester, 3),
		subject("B201", FirstYear, SecondSemester, 3, "A101"),
	})
	enrollments := []models.Enrollment{
		graded(FirstYear, FirstSemester, map[string]float64{"A101": 2.0, "A102": 4.0}),
	}
	history := ProjectHistory(models.Student{ID: "1001", YearLevel: FirstYear, Semester: FirstSemester}, enrollments, catalogue)
	require.Equal(t, []string{"A101"}, history.Passed.Sorted())
	require.Equal(t, []string{"A102"}, history.Failed.Sorted())

	partition := PartitionCandidates(history, Term{FirstYear, SecondSemester}, catalogue)

	assert.Equal(t, []string{"A102"}, codes(partition.Mandatory))
	assert.Equal(t, []string{"B201"}, codes(partition.Eligible))
	assert.Empty(t, partition.Ineligible)
}

func TestPartitionFailedCarryMatchesSemesterOnly(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("F1", FirstYear, FirstSemester, 3),
		subject("F2", FirstYear, SecondSemester, 3),
		subject("N1", SecondYear, FirstSemester, 3),
	})
	history := History{Passed: CodeSet{}, Failed: NewCodeSet("F1", "F2")}

	partition := PartitionCandidates(history, Term{SecondYear, FirstSemester}, catalogue)

	assert.Equal(t, []string{"F1"}, codes(partition.Mandatory))
	assert.Equal(t, []string{"N1"}, codes(partition.Eligible))
}

func TestPartitionPrerequisiteInSameTerm(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("P", SecondYear, FirstSemester, 3),
		subject("Q", SecondYear, FirstSemester, 3, "P"),
	})
	history := History{Passed: CodeSet{}, Failed: CodeSet{}}

	partition := PartitionCandidates(history, Term{SecondYear, FirstSemester}, catalogue)

	assert.Equal(t, []string{"P"}, codes(partition.Eligible))
	require.Len(t, partition.Ineligible, 1)
	assert.Equal(t, "Q", partition.Ineligible[0].Subject.Code)
	assert.Equal(t, []string{"P"}, partition.Ineligible[0].Missing)
	assert.Equal(t, "missing: P", partition.Ineligible[0].Reason)
}

func TestPartitionDanglingPrerequisite(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("C1", ThirdYear, FirstSemester, 3, "GONE"),
		subject("C2", ThirdYear, FirstSemester, 3, "C9", "GONE"),
		subject("C9", SecondYear, SecondSemester, 3),
	})
	history := History{Passed: CodeSet{}, Failed: CodeSet{}}

	partition := PartitionCandidates(history, Term{ThirdYear, FirstSemester}, catalogue)

	require.Len(t, partition.Ineligible, 2)
	assert.Equal(t, []string{"GONE"}, partition.Ineligible[0].Dangling)
	assert.Equal(t, "dangling prerequisite: GONE", partition.Ineligible[0].Reason)
	assert.Equal(t, "missing: C9; dangling prerequisite: GONE", partition.Ineligible[1].Reason)
}

func TestPartitionInvariants(t *testing.T) {
	catalogue := NewCatalogue([]models.Subject{
		subject("A1", FirstYear, FirstSemester, 3),
		subject("A2", FirstYear, FirstSemester, 3),
		subject("A3", FirstYear, SecondSemester, 3),
		subject("B1", SecondYear, FirstSemester, 3, "A1"),
		subject("B2", SecondYear, FirstSemester, 3, "A2"),
		subject("B3", SecondYear, FirstSemester, 3, "A1", "A3"),
		subject("B4", SecondYear, FirstSemester, 3),
	})
	enrollments := []models.Enrollment{
		graded(FirstYear, FirstSemester, map[string]float64{"A1": 1.75, "A2": 5.0}),
		graded(FirstYear, SecondSemester, map[string]float64{"A3": 2.5, "B4": 1.0}),
	}
	history := ProjectHistory(models.Student{ID: "1001", YearLevel: FirstYear, Semester: SecondSemester}, enrollments, catalogue)
	next := Term{SecondYear, FirstSemester}

	partition := PartitionCandidates(history, next, catalogue)

	seen := map[string]int{}
	for _, s := range partition.Mandatory {
		seen[s.Code]++
		assert.True(t, history.Failed.Has(s.Code))
		assert.Equal(t, next.Semester, s.Semester)
	}
	for _, s := range partition.Eligible {
		seen[s.Code]++
		for _, p := range s.Prerequisites {
			assert.True(t, history.Passed.Has(p), "%s requires %s", s.Code, p)
		}
	}
	for _, e := range partition.Ineligible {
		seen[e.Subject.Code]++
	}
	for code, count := range seen {
		assert.Equal(t, 1, count, code)
		assert.False(t, history.Passed.Has(code), code)
	}
	assert.Equal(t, []string{"A2"}, codes(partition.Mandatory))
	assert.Equal(t, []string{"B1", "B3"}, codes(partition.Eligible))
	assert.Equal(t, []string{"B2"}, ineligibleCodes(partition.Ineligible))

	again := PartitionCandidates(history, next, catalogue)
	assert.Equal(t, partition, again)
}
