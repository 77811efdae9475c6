package academic

import (
	"fmt"
	"strings"

	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

// CheckPrerequisites validates the prerequisites of candidate against the catalogue as
// it would look after candidate is written: no self reference, every code exists and
// the graph stays acyclic.
func CheckPrerequisites(candidate models.Subject, catalogue Catalogue) error {
	code := models.NormalizeCode(candidate.Code)
	next := make(Catalogue, len(catalogue)+1)
	for k, v := range catalogue {
		next[k] = v
	}
	next[code] = candidate

	for _, raw := range candidate.Prerequisites {
		prereq := models.NormalizeCode(raw)
		if prereq == code {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s cannot require itself", code))
		}
		if _, ok := next[prereq]; !ok {
			return appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrSubjectNotFound, fmt.Sprintf("prerequisite %s does not exist", prereq)),
				map[string]interface{}{"code": prereq},
			)
		}
	}

	if cycle := findCycle(code, next); len(cycle) > 0 {
		return appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "prerequisite cycle: "+strings.Join(cycle, " -> ")),
			map[string]interface{}{"cycle": cycle},
		)
	}
	return nil
}

// findCycle walks prerequisite edges depth first from start and returns the first
// cycle that passes through start. Dangling edges are ignored.
func findCycle(start string, catalogue Catalogue) []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(catalogue))
	path := make([]string, 0)

	var visit func(code string) []string
	visit = func(code string) []string {
		state[code] = active
		path = append(path, code)
		for _, raw := range catalogue[code].Prerequisites {
			prereq := models.NormalizeCode(raw)
			if _, ok := catalogue[prereq]; !ok {
				continue
			}
			switch state[prereq] {
			case active:
				if prereq != start {
					continue
				}
				return append(append([]string(nil), path...), prereq)
			case unvisited:
				if cycle := visit(prereq); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[code] = done
		return nil
	}
	return visit(start)
}
