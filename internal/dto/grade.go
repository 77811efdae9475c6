package dto

// UpdateGradeRequest sets one grade. Grade 0 resets it.
type UpdateGradeRequest struct {
	StudentID   string  `json:"studentId" validate:"required"`
	SubjectCode string  `json:"subjectCode" validate:"required"`
	Grade       float64 `json:"grade"`
}

// BulkGradeRequest applies several grade edits for one subject.
type BulkGradeRequest struct {
	Grades []StudentGrade `json:"grades" validate:"required,min=1,dive"`
}

// StudentGrade is one row of a bulk grade edit.
type StudentGrade struct {
	StudentID string  `json:"studentId" validate:"required"`
	Grade     float64 `json:"grade"`
}

// BulkGradeResult reports which rows were applied.
type BulkGradeResult struct {
	Updated []string        `json:"updated"`
	Failed  []GradeRowError `json:"failed"`
}

// GradeRowError explains a rejected bulk grade row.
type GradeRowError struct {
	StudentID string `json:"studentId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// GradeSheetRow is one student on a subject's roster.
type GradeSheetRow struct {
	StudentID string  `json:"studentId"`
	Name      string  `json:"name"`
	YearLevel string  `json:"yearLevel"`
	Semester  string  `json:"semester"`
	Grade     float64 `json:"grade"`
	Remark    string  `json:"remark"`
}

// GradeSheet is the grading roster for one subject.
type GradeSheet struct {
	SubjectCode string          `json:"subjectCode"`
	SubjectName string          `json:"subjectName"`
	Units       int             `json:"units"`
	Rows        []GradeSheetRow `json:"rows"`
}
