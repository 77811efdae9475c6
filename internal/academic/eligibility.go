package academic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/evaluation-system/internal/models"
)

// Ineligible is a candidate that cannot be taken yet.
type Ineligible struct {
	Subject models.Subject `json:"subject"`
	// Missing are catalogue prerequisites the student has not passed.
	Missing []string `json:"missing,omitempty"`
	// Dangling are prerequisite codes that no longer exist in the catalogue.
	Dangling []string `json:"dangling,omitempty"`
	Reason   string   `json:"reason"`
}

// Partition is the set of candidate subjects for one term split into buckets.
type Partition struct {
	Term       Term             `json:"term"`
	Mandatory  []models.Subject `json:"mandatory"`
	Eligible   []models.Subject `json:"eligible"`
	Ineligible []Ineligible     `json:"ineligible"`
}

// Offered returns mandatory and eligible subjects indexed by code.
func (p Partition) Offered() Catalogue {
	offered := make(Catalogue, len(p.Mandatory)+len(p.Eligible))
	for _, s := range p.Mandatory {
		offered[models.NormalizeCode(s.Code)] = s
	}
	for _, s := range p.Eligible {
		offered[models.NormalizeCode(s.Code)] = s
	}
	return offered
}

// PartitionCandidates assembles the candidates for next and assigns each to a bucket.
//
// Candidates are the subjects scheduled for next plus failed subjects whose semester
// matches next. A failed candidate is a mandatory retake; a passed one is never
// offered; the rest are eligible when every prerequisite has been passed. Subjects
// being taken in the same term do not satisfy prerequisites.
func PartitionCandidates(history History, next Term, catalogue Catalogue) Partition {
	result := Partition{
		Term:       next,
		Mandatory:  []models.Subject{},
		Eligible:   []models.Subject{},
		Ineligible: []Ineligible{},
	}

	candidates := make(map[string]models.Subject)
	for code, subject := range catalogue {
		scheduled := strings.EqualFold(subject.YearLevel, next.YearLevel) && strings.EqualFold(subject.Semester, next.Semester)
		failedCarry := history.Failed.Has(code) && strings.EqualFold(subject.Semester, next.Semester)
		if scheduled || failedCarry {
			candidates[code] = subject
		}
	}

	for code, subject := range candidates {
		switch {
		case history.Failed.Has(code) && strings.EqualFold(subject.Semester, next.Semester):
			result.Mandatory = append(result.Mandatory, subject)
		case history.Passed.Has(code):
		default:
			missing, dangling := unmetPrerequisites(subject, history.Passed, catalogue)
			if len(missing) == 0 && len(dangling) == 0 {
				result.Eligible = append(result.Eligible, subject)
				continue
			}
			result.Ineligible = append(result.Ineligible, Ineligible{
				Subject:  subject,
				Missing:  missing,
				Dangling: dangling,
				Reason:   ineligibleReason(missing, dangling),
			})
		}
	}

	sortSubjects(result.Mandatory)
	sortSubjects(result.Eligible)
	sort.Slice(result.Ineligible, func(i, j int) bool {
		return models.NormalizeCode(result.Ineligible[i].Subject.Code) < models.NormalizeCode(result.Ineligible[j].Subject.Code)
	})
	return result
}

func unmetPrerequisites(subject models.Subject, passed CodeSet, catalogue Catalogue) (missing, dangling []string) {
	seen := CodeSet{}
	for _, raw := range subject.Prerequisites {
		code := models.NormalizeCode(raw)
		if code == "" || seen.Has(code) {
			continue
		}
		seen.Add(code)
		if passed.Has(code) {
			continue
		}
		if _, ok := catalogue[code]; !ok {
			dangling = append(dangling, code)
			continue
		}
		missing = append(missing, code)
	}
	sort.Strings(missing)
	sort.Strings(dangling)
	return missing, dangling
}

func ineligibleReason(missing, dangling []string) string {
	parts := make([]string, 0, 2)
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	for _, code := range dangling {
		parts = append(parts, fmt.Sprintf("dangling prerequisite: %s", code))
	}
	return strings.Join(parts, "; ")
}

func sortSubjects(subjects []models.Subject) {
	sort.Slice(subjects, func(i, j int) bool {
		return models.NormalizeCode(subjects[i].Code) < models.NormalizeCode(subjects[j].Code)
	})
}
