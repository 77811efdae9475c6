package service

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluation-system/internal/academic"
	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
	Upsert(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, code string) error
}

// SubjectService manages the subject catalogue.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs SubjectService.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns subjects matching the filter ordered by code.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, storeError(err, "list subjects")
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Subject, 0, len(subjects))
	for _, subject := range subjects {
		if filter.Department != "" && !strings.EqualFold(subject.Department, filter.Department) {
			continue
		}
		if filter.YearLevel != "" && !strings.EqualFold(subject.YearLevel, filter.YearLevel) {
			continue
		}
		if filter.Semester != "" && !strings.EqualFold(subject.Semester, filter.Semester) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(subject.Code+" "+subject.Name), search) {
			continue
		}
		matched = append(matched, subject)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Code < matched[j].Code })
	page, pagination := models.Paginate(matched, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// Get returns one subject by code.
func (s *SubjectService) Get(ctx context.Context, code string) (*models.Subject, error) {
	subject, err := s.repo.FindByCode(ctx, models.NormalizeCode(code))
	if err != nil {
		return nil, lookupError(err, appErrors.ErrSubjectNotFound, "subject")
	}
	return subject, nil
}

// Create adds a new subject to the catalogue.
func (s *SubjectService) Create(ctx context.Context, req dto.SubjectRequest) (*models.Subject, error) {
	subject, err := s.buildSubject(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByCode(ctx, subject.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
	} else if !isNotFound(err) {
		return nil, storeError(err, "check subject code")
	}
	return s.save(ctx, subject)
}

// Update replaces the subject identified by code.
func (s *SubjectService) Update(ctx context.Context, code string, req dto.SubjectRequest) (*models.Subject, error) {
	req.Code = code
	subject, err := s.buildSubject(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, subject.Code); err != nil {
		return nil, err
	}
	return s.save(ctx, subject)
}

// Delete removes a subject. Prerequisites, assignments and enrollments that reference
// it are left dangling.
func (s *SubjectService) Delete(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, models.NormalizeCode(code)); err != nil {
		return lookupError(err, appErrors.ErrSubjectNotFound, "subject")
	}
	s.cache.InvalidateAll(ctx)
	s.logger.Info("subject deleted", zap.String("code", models.NormalizeCode(code)))
	return nil
}

// ImportWorkbook upserts the subjects listed on the first sheet of an xlsx workbook.
// The first row is a header; columns are code, name, units, department, year level,
// semester and prerequisites separated by ';'. Invalid rows are skipped and reported.
func (s *SubjectService) ImportWorkbook(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to open workbook")
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", zap.Error(err))
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read workbook rows")
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(err, "load subjects")
	}
	stored := academic.NewCatalogue(existing)
	catalogue := academic.NewCatalogue(existing)

	result := &dto.ImportResult{Imported: []string{}, Skipped: []dto.ImportRowError{}}
	type parsedRow struct {
		line    int
		subject models.Subject
	}
	parsed := make([]parsedRow, 0, len(rows))
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		subject, err := s.buildSubject(workbookRequest(row))
		if err != nil {
			result.Skipped = append(result.Skipped, dto.ImportRowError{Row: i + 1, Code: cell(row, 0), Reason: appErrors.FromError(err).Message})
			continue
		}
		catalogue[subject.Code] = *subject
		parsed = append(parsed, parsedRow{line: i + 1, subject: *subject})
	}

	// A rejected row leaves the catalogue, which can invalidate rows that required it,
	// so rows are re-checked until none are rejected.
	accepted := parsed
	for {
		kept := make([]parsedRow, 0, len(accepted))
		for _, row := range accepted {
			if err := academic.CheckPrerequisites(row.subject, catalogue); err != nil {
				result.Skipped = append(result.Skipped, dto.ImportRowError{Row: row.line, Code: row.subject.Code, Reason: appErrors.FromError(err).Message})
				if previous, ok := stored[row.subject.Code]; ok {
					catalogue[row.subject.Code] = previous
				} else {
					delete(catalogue, row.subject.Code)
				}
				continue
			}
			kept = append(kept, row)
		}
		if len(kept) == len(accepted) {
			break
		}
		accepted = kept
	}

	for _, row := range accepted {
		subject := row.subject
		if err := s.repo.Upsert(ctx, &subject); err != nil {
			return nil, storeError(err, "import subject "+subject.Code)
		}
		result.Imported = append(result.Imported, subject.Code)
	}
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].Row < result.Skipped[j].Row })

	if len(result.Imported) > 0 {
		s.cache.InvalidateAll(ctx)
	}
	s.logger.Info("subject workbook imported", zap.Int("imported", len(result.Imported)), zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

func (s *SubjectService) save(ctx context.Context, subject *models.Subject) (*models.Subject, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(err, "load subjects")
	}
	if err := academic.CheckPrerequisites(*subject, academic.NewCatalogue(existing)); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, subject); err != nil {
		return nil, storeError(err, "save subject")
	}
	s.cache.InvalidateAll(ctx)
	return subject, nil
}

// buildSubject validates a request and normalises codes and term labels.
func (s *SubjectService) buildSubject(req dto.SubjectRequest) (*models.Subject, error) {
	req.Code = models.NormalizeCode(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	term, err := academic.ParseTerm(req.YearLevel, req.Semester)
	if err != nil {
		return nil, err
	}
	prereqs := make([]string, 0, len(req.Prerequisites))
	seen := make(map[string]struct{}, len(req.Prerequisites))
	for _, raw := range req.Prerequisites {
		code := models.NormalizeCode(raw)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		prereqs = append(prereqs, code)
	}
	return &models.Subject{
		Code:          req.Code,
		Name:          strings.TrimSpace(req.Name),
		Units:         req.Units,
		Department:    strings.TrimSpace(req.Department),
		YearLevel:     term.YearLevel,
		Semester:      term.Semester,
		Prerequisites: prereqs,
	}, nil
}

func workbookRequest(row []string) dto.SubjectRequest {
	units, _ := strconv.Atoi(cell(row, 2))
	var prereqs []string
	for _, code := range strings.Split(cell(row, 6), ";") {
		if code = strings.TrimSpace(code); code != "" {
			prereqs = append(prereqs, code)
		}
	}
	return dto.SubjectRequest{
		Code:          cell(row, 0),
		Name:          cell(row, 1),
		Units:         units,
		Department:    cell(row, 3),
		YearLevel:     cell(row, 4),
		Semester:      cell(row, 5),
		Prerequisites: prereqs,
	}
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// SubjectWorkbookHeaders lists the expected import columns.
var SubjectWorkbookHeaders = []string{"Code", "Name", "Units", "Department", "Year Level", "Semester", "Prerequisites"}
