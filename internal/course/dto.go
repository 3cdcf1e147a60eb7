package course

import (
	"strings"

	"github.com/frahmantamala/training-management/internal/core/common/validation"
)

// CourseForm is the create/update payload. ID and CreatedBy are never taken
// from the client.
type CourseForm struct {
	Name               string       `json:"name" validate:"required,max=200"`
	Objective          string       `json:"objective" validate:"max=2000"`
	Instructor         string       `json:"instructor" validate:"max=100"`
	InstructorOrg      string       `json:"instructor_org" validate:"max=200"`
	Company            string       `json:"company" validate:"required"`
	Department         string       `json:"department" validate:"required"`
	StartDate          string       `json:"start_date" validate:"required,date"`
	EndDate            string       `json:"end_date" validate:"required,date"`
	Time               string       `json:"time" validate:"max=50"`
	Duration           float64      `json:"duration" validate:"gte=0"`
	ExpectedAttendees  int          `json:"expected_attendees" validate:"gte=0"`
	ActualAttendees    int          `json:"actual_attendees" validate:"gte=0"`
	Cost               int64        `json:"cost" validate:"gte=0"`
	Satisfaction       float64      `json:"satisfaction" validate:"gte=0,lte=5"`
	Status             Status       `json:"status" validate:"omitempty,oneof=Planned Completed Cancelled"`
	CancellationReason string       `json:"cancellation_reason" validate:"required_if=Status Cancelled"`
	TrainingType       TrainingType `json:"training_type" validate:"omitempty,oneof=Internal External"`
	Trainees           string       `json:"trainees"`
}

func (f CourseForm) Validate() error {
	return validation.Struct(f)
}

// apply copies the editable fields onto c, filling defaults.
func (f CourseForm) apply(c *Course) {
	c.Name = strings.TrimSpace(f.Name)
	c.Objective = f.Objective
	c.Instructor = f.Instructor
	c.InstructorOrg = f.InstructorOrg
	c.Company = f.Company
	c.Department = f.Department
	c.StartDate = f.StartDate
	c.EndDate = f.EndDate
	c.Time = f.Time
	c.Duration = f.Duration
	c.ExpectedAttendees = f.ExpectedAttendees
	c.ActualAttendees = f.ActualAttendees
	c.Cost = f.Cost
	c.Satisfaction = f.Satisfaction
	c.Trainees = f.Trainees

	c.Status = f.Status
	if c.Status == "" {
		c.Status = StatusPlanned
	}
	c.CancellationReason = ""
	if c.Status == StatusCancelled {
		c.CancellationReason = strings.TrimSpace(f.CancellationReason)
	}

	c.TrainingType = f.TrainingType
	if c.TrainingType == "" {
		c.TrainingType = TrainingInternal
	}
}

// SaveResult is returned by create and update. Warnings are advisory and
// never block the save.
type SaveResult struct {
	Course   Course   `json:"course"`
	Warnings []string `json:"warnings,omitempty"`
}

type ListResponse struct {
	Groups []MonthGroup `json:"groups"`
	Total  int          `json:"total"`
}
