package course

import (
	"context"

	"github.com/frahmantamala/training-management/internal"
)

type Status string

const (
	StatusPlanned   Status = "Planned"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

type TrainingType string

const (
	TrainingInternal TrainingType = "Internal"
	TrainingExternal TrainingType = "External"
)

// Label is the wording used in the tabular import/export format.
func (t TrainingType) Label() string {
	if t == TrainingExternal {
		return "外訓"
	}
	return "內訓"
}

// Course is one training record. Dates are YYYY-MM-DD strings so that
// lexical order is calendar order.
type Course struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Objective          string       `json:"objective"`
	Instructor         string       `json:"instructor"`
	InstructorOrg      string       `json:"instructor_org"`
	Company            string       `json:"company"`
	Department         string       `json:"department"`
	StartDate          string       `json:"start_date"`
	EndDate            string       `json:"end_date"`
	Time               string       `json:"time"`
	Duration           float64      `json:"duration"`
	ExpectedAttendees  int          `json:"expected_attendees"`
	ActualAttendees    int          `json:"actual_attendees"`
	Cost               int64        `json:"cost"`
	Satisfaction       float64      `json:"satisfaction"`
	Status             Status       `json:"status"`
	CancellationReason string       `json:"cancellation_reason,omitempty"`
	CreatedBy          string       `json:"created_by"`
	TrainingType       TrainingType `json:"training_type"`
	Trainees           string       `json:"trainees,omitempty"`
}

// Month is the YYYY-MM bucket the course is listed under.
func (c *Course) Month() string {
	if len(c.StartDate) < 7 {
		return c.StartDate
	}
	return c.StartDate[:7]
}

func (c *Course) IsCancelled() bool {
	return c.Status == StatusCancelled
}

func (c *Course) IsCompleted() bool {
	return c.Status == StatusCompleted
}

// DatesOutOfOrder reports an end date before the start date. Such records
// are stored as entered.
func (c *Course) DatesOutOfOrder() bool {
	return c.StartDate != "" && c.EndDate != "" && c.EndDate < c.StartDate
}

// Repository is the persistence backend for course records.
type Repository interface {
	ListAll(ctx context.Context) ([]Course, error)
	Upsert(ctx context.Context, c Course) error
	Delete(ctx context.Context, id string) error
	BatchUpsert(ctx context.Context, courses []Course) error
	BatchDelete(ctx context.Context, ids []string) error
}

var ErrCourseNotFound = internal.NewNotFoundError("course not found", internal.ErrCodeCourseNotFound)
