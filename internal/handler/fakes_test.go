package handler

import (
	"context"
	"io"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

type fakeEnrollmentSrv struct {
	options   *dto.EnrollmentOptions
	optionHit bool
	err       error
	committed struct {
		studentID string
		codes     []string
	}
}

func (f *fakeEnrollmentSrv) ProjectHistory(_ context.Context, studentID string) (*academic.History, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &academic.History{StudentID: studentID, Passed: academic.NewCodeSet("CS101"), Failed: academic.NewCodeSet()}, nil
}

func (f *fakeEnrollmentSrv) NextTerm(context.Context, string) (*dto.NextTermResponse, error) {
	return nil, f.err
}

func (f *fakeEnrollmentSrv) Options(context.Context, string) (*dto.EnrollmentOptions, bool, error) {
	return f.options, f.optionHit, f.err
}

func (f *fakeEnrollmentSrv) Commit(_ context.Context, studentID string, req dto.CommitEnrollmentRequest) (*models.Enrollment, error) {
	f.committed.studentID = studentID
	f.committed.codes = req.Codes
	if f.err != nil {
		return nil, f.err
	}
	return &models.Enrollment{StudentID: studentID, YearLevel: academic.FirstYear, Semester: academic.SecondSemester}, nil
}

type fakeRecordSrv struct {
	format dto.ExportFormat
	err    error
}

func (f *fakeRecordSrv) Record(_ context.Context, studentID string) (*dto.AcademicRecord, error) {
	return &dto.AcademicRecord{Student: models.Student{ID: studentID}}, f.err
}

func (f *fakeRecordSrv) Export(_ context.Context, studentID string, format dto.ExportFormat) (*dto.ExportResult, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ExportResult{
		Filename:    studentID + "-record." + string(format),
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.3"),
	}, nil
}

type fakeGradeSrv struct {
	actor   models.Actor
	request dto.UpdateGradeRequest
	err     error
}

func (f *fakeGradeSrv) UpdateGrade(_ context.Context, actor models.Actor, req dto.UpdateGradeRequest) (*models.EnrolledSubject, error) {
	f.actor = actor
	f.request = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.EnrolledSubject{Code: req.SubjectCode, Grade: req.Grade}, nil
}

func (f *fakeGradeSrv) BulkUpdate(_ context.Context, actor models.Actor, _ string, req dto.BulkGradeRequest) (*dto.BulkGradeResult, error) {
	f.actor = actor
	result := &dto.BulkGradeResult{}
	for _, row := range req.Grades {
		result.Updated = append(result.Updated, row.StudentID)
	}
	return result, f.err
}

func (f *fakeGradeSrv) GradeSheet(_ context.Context, actor models.Actor, code string) (*dto.GradeSheet, error) {
	f.actor = actor
	return &dto.GradeSheet{SubjectCode: code}, f.err
}

func (f *fakeGradeSrv) ExportSheet(_ context.Context, actor models.Actor, code string) (*dto.ExportResult, error) {
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ExportResult{Filename: code + "-grades.xlsx", ContentType: "application/octet-stream", Content: []byte("PK")}, nil
}

type fakeSubjectSrv struct {
	imported []byte
}

func (f *fakeSubjectSrv) List(context.Context, models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	return []models.Subject{}, &models.Pagination{Page: 1, PageSize: defaultPageSize}, nil
}

func (f *fakeSubjectSrv) Get(_ context.Context, code string) (*models.Subject, error) {
	return nil, appErrors.Clone(appErrors.ErrSubjectNotFound, "subject "+code+" not found")
}

func (f *fakeSubjectSrv) Create(_ context.Context, req dto.SubjectRequest) (*models.Subject, error) {
	return &models.Subject{Code: req.Code, Name: req.Name, Units: req.Units}, nil
}

func (f *fakeSubjectSrv) Update(_ context.Context, code string, req dto.SubjectRequest) (*models.Subject, error) {
	return &models.Subject{Code: code, Name: req.Name, Units: req.Units}, nil
}

func (f *fakeSubjectSrv) Delete(context.Context, string) error { return nil }

func (f *fakeSubjectSrv) ImportWorkbook(_ context.Context, r io.Reader) (*dto.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.imported = data
	return &dto.ImportResult{}, nil
}

type fakeAuthSrv struct{}

func (fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	return &models.LoginResponse{AccessToken: "token-" + req.Username, User: models.UserInfo{Username: req.Username}}, nil
}

func (fakeAuthSrv) Me(_ context.Context, actor models.Actor) (*models.UserInfo, error) {
	return &models.UserInfo{Username: actor.Username, Role: actor.Role}, nil
}

func (fakeAuthSrv) ChangePassword(context.Context, string, models.ChangePasswordRequest) error {
	return nil
}

// fakeTokens maps bearer tokens to claims.
type fakeTokens map[string]*models.JWTClaims

func (f fakeTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := f[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}
