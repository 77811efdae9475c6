package academic

import (
	"math"

	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

// TotalUnitsRequired is the default unit count needed to complete the curriculum.
const TotalUnitsRequired = 176

// Grade scale bounds. Zero is accepted separately and means the grade was reset.
const (
	MinGrade = 1.0
	MaxGrade = 5.0
)

// ValidateGrade accepts 0 or a value within [MinGrade, MaxGrade].
func ValidateGrade(grade float64) error {
	if math.IsNaN(grade) || (grade != 0 && (grade < MinGrade || grade > MaxGrade)) {
		return appErrors.InvalidGrade(grade)
	}
	return nil
}

// Summary aggregates a student's graded rows.
type Summary struct {
	GPA            float64 `json:"gpa"`
	GradedUnits    int     `json:"gradedUnits"`
	UnitsCompleted int     `json:"unitsCompleted"`
	UnitsRemaining int     `json:"unitsRemaining"`
}

// Summarize computes the unit-weighted GPA over graded rows and the passed units
// counted once per subject code. UnitsRemaining never goes below zero.
func Summarize(enrollments []models.Enrollment, totalUnits int) Summary {
	if totalUnits < 1 {
		totalUnits = TotalUnitsRequired
	}
	var (
		weighted float64
		summary  Summary
	)
	passed := CodeSet{}
	for _, enrollment := range enrollments {
		for _, row := range enrollment.Subjects {
			if row.Grade == 0 || row.Units <= 0 {
				continue
			}
			weighted += row.Grade * float64(row.Units)
			summary.GradedUnits += row.Units
			if IsPassing(row.Grade) && !passed.Has(row.Code) {
				passed.Add(row.Code)
				summary.UnitsCompleted += row.Units
			}
		}
	}
	if summary.GradedUnits > 0 {
		summary.GPA = math.Round(weighted/float64(summary.GradedUnits)*100) / 100
	}
	summary.UnitsRemaining = totalUnits - summary.UnitsCompleted
	if summary.UnitsRemaining < 0 {
		summary.UnitsRemaining = 0
	}
	return summary
}
