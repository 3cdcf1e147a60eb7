package course

import "time"

type Course struct {
	ID                 string    `gorm:"primaryKey;type:varchar(64)"`
	Name               string    `gorm:"column:name;not null"`
	Objective          string    `gorm:"column:objective"`
	Instructor         string    `gorm:"column:instructor"`
	InstructorOrg      string    `gorm:"column:instructor_org"`
	Company            string    `gorm:"column:company;not null;index:idx_courses_scope"`
	Department         string    `gorm:"column:department;not null;index:idx_courses_scope"`
	StartDate          string    `gorm:"column:start_date;type:varchar(10);index"`
	EndDate            string    `gorm:"column:end_date;type:varchar(10)"`
	Time               string    `gorm:"column:time"`
	Duration           float64   `gorm:"column:duration"`
	ExpectedAttendees  int       `gorm:"column:expected_attendees"`
	ActualAttendees    int       `gorm:"column:actual_attendees"`
	Cost               int64     `gorm:"column:cost"`
	Satisfaction       float64   `gorm:"column:satisfaction"`
	Status             string    `gorm:"column:status;not null"`
	CancellationReason string    `gorm:"column:cancellation_reason"`
	CreatedBy          string    `gorm:"column:created_by;not null"`
	TrainingType       string    `gorm:"column:training_type;not null"`
	Trainees           string    `gorm:"column:trainees"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Course) TableName() string {
	return "courses"
}
