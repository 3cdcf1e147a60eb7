package postgres

import (
	"context"
	"fmt"

	courseDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/course"
	"github.com/frahmantamala/training-management/internal/course"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 100

// updatableColumns are overwritten on conflict; id and created_at are kept.
var updatableColumns = []string{
	"name", "objective", "instructor", "instructor_org", "company", "department",
	"start_date", "end_date", "time", "duration", "expected_attendees", "actual_attendees",
	"cost", "satisfaction", "status", "cancellation_reason", "created_by", "training_type",
	"trainees", "updated_at",
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(updatableColumns),
	}
}

func (r *CourseRepository) ListAll(ctx context.Context) ([]course.Course, error) {
	var rows []courseDatamodel.Course
	if err := r.db.WithContext(ctx).Order("start_date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]course.Course, 0, len(rows))
	for i := range rows {
		out = append(out, toDomain(&rows[i]))
	}
	return out, nil
}

func (r *CourseRepository) Upsert(ctx context.Context, c course.Course) error {
	row := toRow(c)
	return r.db.WithContext(ctx).Clauses(upsertClause()).Create(&row).Error
}

// Delete removes a course. Deleting an id that is already gone succeeds.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&courseDatamodel.Course{}).Error
}

func (r *CourseRepository) BatchUpsert(ctx context.Context, courses []course.Course) error {
	if len(courses) == 0 {
		return nil
	}
	rows := make([]courseDatamodel.Course, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, toRow(c))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(upsertClause()).CreateInBatches(&rows, batchSize).Error
	})
}

func (r *CourseRepository) BatchDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&courseDatamodel.Course{}).Error
	})
}

func toRow(c course.Course) courseDatamodel.Course {
	return courseDatamodel.Course{
		ID:                 c.ID,
		Name:               c.Name,
		Objective:          c.Objective,
		Instructor:         c.Instructor,
		InstructorOrg:      c.InstructorOrg,
		Company:            c.Company,
		Department:         c.Department,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		Time:               c.Time,
		Duration:           c.Duration,
		ExpectedAttendees:  c.ExpectedAttendees,
		ActualAttendees:    c.ActualAttendees,
		Cost:               c.Cost,
		Satisfaction:       c.Satisfaction,
		Status:             string(c.Status),
		CancellationReason: c.CancellationReason,
		CreatedBy:          c.CreatedBy,
		TrainingType:       string(c.TrainingType),
		Trainees:           c.Trainees,
	}
}

func toDomain(row *courseDatamodel.Course) course.Course {
	return course.Course{
		ID:                 row.ID,
		Name:               row.Name,
		Objective:          row.Objective,
		Instructor:         row.Instructor,
		InstructorOrg:      row.InstructorOrg,
		Company:            row.Company,
		Department:         row.Department,
		StartDate:          row.StartDate,
		EndDate:            row.EndDate,
		Time:               row.Time,
		Duration:           row.Duration,
		ExpectedAttendees:  row.ExpectedAttendees,
		ActualAttendees:    row.ActualAttendees,
		Cost:               row.Cost,
		Satisfaction:       row.Satisfaction,
		Status:             course.Status(row.Status),
		CancellationReason: row.CancellationReason,
		CreatedBy:          row.CreatedBy,
		TrainingType:       course.TrainingType(row.TrainingType),
		Trainees:           row.Trainees,
	}
}
