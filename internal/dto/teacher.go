package dto

// CreateTeacherRequest registers a new teacher.
type CreateTeacherRequest struct {
	ID               string   `json:"id" validate:"required,alphanum,max=32"`
	FirstName        string   `json:"firstName" validate:"required,max=100"`
	LastName         string   `json:"lastName" validate:"required,max=100"`
	Email            string   `json:"email" validate:"required,email"`
	Department       string   `json:"department" validate:"max=100"`
	Position         string   `json:"position" validate:"max=100"`
	AssignedSubjects []string `json:"assignedSubjects" validate:"dive,required"`
}

// UpdateTeacherRequest replaces a teacher's attributes.
type UpdateTeacherRequest struct {
	FirstName        string   `json:"firstName" validate:"required,max=100"`
	LastName         string   `json:"lastName" validate:"required,max=100"`
	Email            string   `json:"email" validate:"required,email"`
	Department       string   `json:"department" validate:"max=100"`
	Position         string   `json:"position" validate:"max=100"`
	AssignedSubjects []string `json:"assignedSubjects" validate:"dive,required"`
}
