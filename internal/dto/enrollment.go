package dto

import (
	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/models"
)

// EnrollmentOptions is the partition presented to a student before enrolling.
type EnrollmentOptions struct {
	StudentID string        `json:"studentId"`
	Current   academic.Term `json:"current"`
	// Next is nil when the student has graduated.
	Next       *academic.Term        `json:"next,omitempty"`
	Graduated  bool                  `json:"graduated"`
	MaxUnits   int                   `json:"maxUnits"`
	Mandatory  []models.Subject      `json:"mandatory"`
	Eligible   []models.Subject      `json:"eligible"`
	Ineligible []academic.Ineligible `json:"ineligible"`
}

// Partition rebuilds the engine partition from the options.
func (o EnrollmentOptions) Partition() academic.Partition {
	p := academic.Partition{Mandatory: o.Mandatory, Eligible: o.Eligible, Ineligible: o.Ineligible}
	if o.Next != nil {
		p.Term = *o.Next
	}
	return p
}

// CommitEnrollmentRequest carries the subjects a student selected.
type CommitEnrollmentRequest struct {
	Codes []string `json:"codes" validate:"dive,required"`
}

// NextTermResponse answers the next-term query.
type NextTermResponse struct {
	Current   academic.Term  `json:"current"`
	Next      *academic.Term `json:"next,omitempty"`
	Graduated bool           `json:"graduated"`
}
