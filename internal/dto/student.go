package dto

// CreateStudentRequest registers a new student.
type CreateStudentRequest struct {
	ID        string `json:"id" validate:"required,len=4,numeric"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

// UpdateStudentRequest replaces a student's administrative attributes. The current
// term may be corrected by an administrator.
type UpdateStudentRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	YearLevel string `json:"yearLevel" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
}

// UpdateProfileRequest is the self-service profile edit for students and teachers.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
}
