package course

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Column positions of the tabular row format shared by import and export.
const (
	ColName = iota
	ColCompany
	ColDepartment
	ColObjective
	ColStartDate
	ColEndDate
	ColTime
	ColDuration
	ColExpectedAttendees
	ColInstructor
	ColInstructorOrg
	ColCost
	ColTrainingType
	ColTrainees

	ColumnCount
)

// HeaderLabel marks the first cell of a header line.
const HeaderLabel = "課程名稱"

// FullWidthComma separates fields just like ',' in imported text.
const FullWidthComma = "，"

var Header = [ColumnCount]string{
	HeaderLabel,
	"公司別",
	"部門/單位",
	"課程目的",
	"開始日期",
	"結束日期",
	"時間",
	"時數",
	"預計人數",
	"講師",
	"講師單位",
	"費用",
	"訓練類型(內訓/外訓)",
	"受訓名單",
}

// HeaderRow returns a fresh copy of Header as a slice.
func HeaderRow() []string {
	h := Header
	return h[:]
}

// Row renders c in column order. Trainees are written pipe separated so the
// row re-imports to the same list.
func Row(c Course) []string {
	row := make([]string, ColumnCount)
	row[ColName] = c.Name
	row[ColCompany] = c.Company
	row[ColDepartment] = c.Department
	row[ColObjective] = c.Objective
	row[ColStartDate] = c.StartDate
	row[ColEndDate] = c.EndDate
	row[ColTime] = c.Time
	row[ColDuration] = strconv.FormatFloat(c.Duration, 'f', -1, 64)
	row[ColExpectedAttendees] = strconv.Itoa(c.ExpectedAttendees)
	row[ColInstructor] = c.Instructor
	row[ColInstructorOrg] = c.InstructorOrg
	row[ColCost] = strconv.FormatInt(c.Cost, 10)
	row[ColTrainingType] = c.TrainingType.Label()
	row[ColTrainees] = strings.Join(SplitTrainees(c.Trainees), "|")
	return row
}

// SplitTrainees breaks a comma joined trainee list into trimmed names.
func SplitTrainees(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WriteRecord writes fields as one line of the row format. Fields are quoted
// the way encoding/csv quotes them, and also when they hold a full-width
// comma, so every field reads back whole.
func WriteRecord(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		if !needsQuotes(f) {
			b.WriteString(f)
			continue
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func needsQuotes(field string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsAny(field, "\",\r\n"+FullWidthComma) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(field)
	return unicode.IsSpace(r)
}
