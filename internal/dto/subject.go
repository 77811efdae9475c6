package dto

// SubjectRequest creates or replaces a catalogue entry.
type SubjectRequest struct {
	Code          string   `json:"code" validate:"required,max=32"`
	Name          string   `json:"name" validate:"required,max=200"`
	Units         int      `json:"units" validate:"required,gt=0"`
	Department    string   `json:"department" validate:"max=100"`
	YearLevel     string   `json:"yearLevel" validate:"required"`
	Semester      string   `json:"semester" validate:"required"`
	Prerequisites []string `json:"prerequisites" validate:"dive,required"`
}

// ImportRowError describes a workbook row that was skipped.
type ImportRowError struct {
	Row    int    `json:"row"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarises a catalogue import.
type ImportResult struct {
	Imported []string         `json:"imported"`
	Skipped  []ImportRowError `json:"skipped"`
}
