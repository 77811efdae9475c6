// Package academic holds the enrollment eligibility and term-progression rules.
//
// Every function here is pure: callers load a snapshot of the student, their
// enrollments and the subject catalogue, and the package derives the academic
// history, the next term, the candidate buckets and the enrollment to commit.
// Persistence, caching and authorisation live in the service layer.
package academic
