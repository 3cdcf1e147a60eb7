package importer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/common/validation"
	"github.com/frahmantamala/training-management/internal/course"
)

const (
	minFields       = 3
	defaultName     = "未命名課程"
	unknownName     = "未知"
	reasonTooFew    = "格式錯誤 (欄位不足)"
	reasonForbidden = "權限不足"
)

// Rejection codes.
const (
	CodeInsufficientFields = "INSUFFICIENT_FIELDS"
)

var (
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
)

// Rejection is a line the importer refused, with its original text.
type Rejection struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Code   string `json:"code"`
	Raw    string `json:"raw"`
}

// Normalizer turns lines into course records on behalf of a principal.
type Normalizer struct {
	now   func() time.Time
	newID func() string
}

func NewNormalizer(now func() time.Time, newID func() string) *Normalizer {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Normalizer{now: now, newID: newID}
}

// Normalize accepts or rejects one line. Unparseable numbers become zero
// rather than rejecting the line.
func (n *Normalizer) Normalize(line Line, p *auth.Principal) (course.Course, *Rejection) {
	f := line.Fields
	if line.Count < minFields {
		name := f.Get(course.ColName)
		if name == "" {
			name = unknownName
		}
		return course.Course{}, &Rejection{
			Row:    line.Number,
			Name:   name,
			Reason: reasonTooFew,
			Code:   CodeInsufficientFields,
			Raw:    line.Text,
		}
	}

	name := f.Get(course.ColName)
	if name == "" {
		name = defaultName
	}
	company := f.Get(course.ColCompany)
	department := f.Get(course.ColDepartment)

	if err := auth.CheckView(p, company, department); err != nil {
		return course.Course{}, &Rejection{
			Row:    line.Number,
			Name:   name,
			Reason: denialReason(err),
			Code:   string(denialCode(err)),
			Raw:    line.Text,
		}
	}

	today := n.now().Format(validation.DateLayout)
	start := f.Get(course.ColStartDate)
	if start == "" {
		start = today
	}
	end := f.Get(course.ColEndDate)
	if end == "" {
		end = start
	}

	typeLabel := f.Get(course.ColTrainingType)
	trainingType := course.TrainingInternal
	if strings.Contains(typeLabel, "外訓") || strings.Contains(strings.ToLower(typeLabel), "external") {
		trainingType = course.TrainingExternal
	}

	return course.Course{
		ID:                n.newID(),
		Name:              name,
		Company:           company,
		Department:        department,
		Objective:         f.Get(course.ColObjective),
		StartDate:         start,
		EndDate:           end,
		Time:              f.Get(course.ColTime),
		Duration:          parseFloat(f.Get(course.ColDuration)),
		ExpectedAttendees: int(parseInt(f.Get(course.ColExpectedAttendees))),
		Instructor:        f.Get(course.ColInstructor),
		InstructorOrg:     f.Get(course.ColInstructorOrg),
		Cost:              parseInt(f.Get(course.ColCost)),
		TrainingType:      trainingType,
		Trainees:          strings.ReplaceAll(f.Get(course.ColTrainees), "|", ","),
		ActualAttendees:   0,
		Satisfaction:      0,
		Status:            course.StatusPlanned,
		CreatedBy:         auth.CreatedByFor(p),
	}, nil
}

func denialReason(err error) string {
	var denied *auth.ViewDeniedError
	if errors.As(err, &denied) {
		return denied.Error()
	}
	return reasonForbidden
}

func denialCode(err error) internal.ErrorCode {
	var denied *auth.ViewDeniedError
	if errors.As(err, &denied) && denied.Kind == auth.DeniedDepartment {
		return internal.ErrCodeDepartmentDenied
	}
	return internal.ErrCodeCompanyDenied
}

// parseFloat reads the leading number of s, so "7h" is 7. Anything else,
// including negatives, is 0.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(leadingFloat.FindString(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(leadingInt.FindString(s), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
