package course

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frahmantamala/training-management/internal/auth"
)

// Taxonomy checks that a company/department pair exists.
type Taxonomy interface {
	Validate(company, department string) error
}

// Collection is a principal's working copy of the course records. Visible
// and Find only ever expose records the principal may read.
type Collection interface {
	Visible() []Course
	Find(id string) (Course, bool)
	Save(ctx context.Context, c Course) error
	Delete(ctx context.Context, id string) error
}

type CollectionProvider interface {
	For(ctx context.Context, p *auth.Principal) (Collection, error)
}

type Service struct {
	taxonomy Taxonomy
	newID    func() string
	logger   *slog.Logger
}

func NewService(taxonomy Taxonomy, logger *slog.Logger) *Service {
	return &Service{
		taxonomy: taxonomy,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Build turns a validated form into the record to store. For updates
// existing is the stored record; p must be able to see both its scope and
// the new one.
func (s *Service) Build(p *auth.Principal, form CourseForm, existing *Course) (Course, []string, error) {
	if err := form.Validate(); err != nil {
		return Course{}, nil, err
	}
	if err := s.taxonomy.Validate(form.Company, form.Department); err != nil {
		return Course{}, nil, err
	}
	if existing != nil {
		if err := auth.CheckView(p, existing.Company, existing.Department); err != nil {
			return Course{}, nil, PermissionError(err)
		}
	}
	if err := auth.CheckView(p, form.Company, form.Department); err != nil {
		return Course{}, nil, PermissionError(err)
	}

	var c Course
	if existing != nil {
		c.ID = existing.ID
		c.CreatedBy = existing.CreatedBy
	} else {
		c.ID = s.newID()
		c.CreatedBy = auth.CreatedByFor(p)
	}
	form.apply(&c)

	var warnings []string
	if c.DatesOutOfOrder() {
		warnings = append(warnings, "end_date is earlier than start_date")
		s.logger.Warn("course saved with end date before start date",
			"course_id", c.ID, "start_date", c.StartDate, "end_date", c.EndDate)
	}
	return c, warnings, nil
}

func (s *Service) List(coll Collection) ListResponse {
	visible := coll.Visible()
	return ListResponse{Groups: GroupByMonth(visible), Total: len(visible)}
}

func (s *Service) Get(coll Collection, id string) (Course, error) {
	c, ok := coll.Find(id)
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, coll Collection, p *auth.Principal, form CourseForm) (SaveResult, error) {
	c, warnings, err := s.Build(p, form, nil)
	if err != nil {
		return SaveResult{}, err
	}
	if err := coll.Save(ctx, c); err != nil {
		return SaveResult{Course: c, Warnings: warnings}, err
	}
	s.logger.Info("course created", "course_id", c.ID, "company", c.Company, "department", c.Department, "created_by", c.CreatedBy)
	return SaveResult{Course: c, Warnings: warnings}, nil
}

func (s *Service) Update(ctx context.Context, coll Collection, p *auth.Principal, id string, form CourseForm) (SaveResult, error) {
	existing, ok := coll.Find(id)
	if !ok {
		return SaveResult{}, ErrCourseNotFound
	}
	c, warnings, err := s.Build(p, form, &existing)
	if err != nil {
		return SaveResult{}, err
	}
	if err := coll.Save(ctx, c); err != nil {
		return SaveResult{Course: c, Warnings: warnings}, err
	}
	s.logger.Info("course updated", "course_id", c.ID)
	return SaveResult{Course: c, Warnings: warnings}, nil
}

func (s *Service) Delete(ctx context.Context, coll Collection, p *auth.Principal, id string) error {
	existing, ok := coll.Find(id)
	if !ok {
		return ErrCourseNotFound
	}
	if err := CheckDelete(p, existing); err != nil {
		return err
	}
	if err := coll.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("course deleted", "course_id", id)
	return nil
}

// Export writes the visible courses matching filter.
func (s *Service) Export(w io.Writer, coll Collection, format Format, filter ExportFilter) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	courses := filter.Apply(coll.Visible())
	if err := Export(w, format, courses); err != nil {
		return 0, err
	}
	return len(courses), nil
}
