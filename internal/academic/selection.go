package academic

import (
	"strings"

	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

// MaxUnits is the default semester load limit.
const MaxUnits = 26

// ValidateSelection checks a proposed selection against the partition it was made
// from and returns the selected subjects in selection order. Checks run in order:
// every code must be offered, every mandatory retake must be included, the unit load
// must not exceed maxUnits and the selection must not be empty while anything is
// offered. A maxUnits below one falls back to MaxUnits.
func ValidateSelection(partition Partition, codes []string, maxUnits int) ([]models.Subject, error) {
	if maxUnits < 1 {
		maxUnits = MaxUnits
	}
	offered := partition.Offered()

	selected := make([]models.Subject, 0, len(codes))
	chosen := CodeSet{}
	for _, raw := range codes {
		code := models.NormalizeCode(raw)
		if code == "" || chosen.Has(code) {
			continue
		}
		subject, ok := offered[code]
		if !ok {
			return nil, appErrors.UnknownCandidate(code)
		}
		chosen.Add(code)
		selected = append(selected, subject)
	}

	var omitted []string
	for _, subject := range partition.Mandatory {
		if !chosen.Has(subject.Code) {
			omitted = append(omitted, models.NormalizeCode(subject.Code))
		}
	}
	if len(omitted) > 0 {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrMandatoryOmitted, "mandatory retakes must be selected: "+strings.Join(omitted, ", ")),
			map[string]interface{}{"codes": omitted},
		)
	}

	units := 0
	for _, subject := range selected {
		units += subject.Units
	}
	if units > maxUnits {
		return nil, appErrors.UnitsExceeded(units, maxUnits)
	}

	if len(selected) == 0 && len(offered) > 0 {
		return nil, appErrors.Clone(appErrors.ErrNothingSelected, "")
	}
	return selected, nil
}

// BuildEnrollment materialises the committed enrollment with ungraded rows.
func BuildEnrollment(studentID string, term Term, subjects []models.Subject) models.Enrollment {
	rows := make([]models.EnrolledSubject, 0, len(subjects))
	for _, subject := range subjects {
		rows = append(rows, models.EnrolledSubject{
			Code:  models.NormalizeCode(subject.Code),
			Name:  subject.Name,
			Units: subject.Units,
		})
	}
	return models.Enrollment{
		StudentID: studentID,
		YearLevel: term.YearLevel,
		Semester:  term.Semester,
		Status:    models.EnrollmentStatusEnrolled,
		Subjects:  rows,
	}
}

// ScheduledFor returns the catalogue subjects defined for the term, ordered by code.
func ScheduledFor(catalogue Catalogue, term Term) []models.Subject {
	out := make([]models.Subject, 0)
	for _, subject := range catalogue {
		if strings.EqualFold(subject.YearLevel, term.YearLevel) && strings.EqualFold(subject.Semester, term.Semester) {
			out = append(out, subject)
		}
	}
	sortSubjects(out)
	return out
}
