package course

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/core/common/validation"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const exportSheet = "Courses"

// utf8BOM lets spreadsheet applications detect the encoding of the CSV.
const utf8BOM = "\ufeff"

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", internal.NewValidationError(fmt.Sprintf("unsupported export format %q", s), internal.ErrCodeUnsupportedExportFormat)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName is the suggested attachment name for an export taken at now.
func (f Format) FileName(now time.Time) string {
	return fmt.Sprintf("courses-%s.%s", now.Format("20060102"), f)
}

// ExportFilter narrows an already visibility-filtered set. From and To bound
// the start date inclusively; empty bounds are open.
type ExportFilter struct {
	From string       `json:"from" validate:"omitempty,date"`
	To   string       `json:"to" validate:"omitempty,date"`
	Type TrainingType `json:"type" validate:"omitempty,oneof=Internal External"`
}

func (f ExportFilter) Validate() error {
	return validation.Struct(f)
}

func (f ExportFilter) Apply(courses []Course) []Course {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if f.From != "" && c.StartDate < f.From {
			continue
		}
		if f.To != "" && c.StartDate > f.To {
			continue
		}
		if f.Type != "" && c.TrainingType != f.Type {
			continue
		}
		out = append(out, c)
	}
	SortByStartDate(out)
	return out
}

// Export writes courses to w in the given format.
func Export(w io.Writer, format Format, courses []Course) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, courses)
	case FormatCSV:
		return WriteCSV(w, courses)
	}
	return internal.NewValidationError(fmt.Sprintf("unsupported export format %q", format), internal.ErrCodeUnsupportedExportFormat)
}

// WriteCSV writes a header line and one row per course, quoting fields as
// needed. The output re-imports through the batch importer.
func WriteCSV(w io.Writer, courses []Course) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := WriteRecord(bw, HeaderRow()); err != nil {
		return err
	}
	for _, c := range courses {
		if err := WriteRecord(bw, Row(c)); err != nil {
			return fmt.Errorf("write course %s: %w", c.ID, err)
		}
	}
	return bw.Flush()
}

// WriteXLSX writes the same columns as WriteCSV into a single sheet workbook,
// keeping numeric columns numeric.
func WriteXLSX(w io.Writer, courses []Course) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]interface{}, 0, ColumnCount)
	for _, h := range Header {
		header = append(header, h)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, c := range courses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(c)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write course %s: %w", c.ID, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "B", "N", 16); err != nil {
		return err
	}

	return f.Write(w)
}

func xlsxRow(c Course) []interface{} {
	text := Row(c)
	row := make([]interface{}, ColumnCount)
	for i, v := range text {
		row[i] = v
	}
	row[ColDuration] = c.Duration
	row[ColExpectedAttendees] = c.ExpectedAttendees
	row[ColCost] = c.Cost
	return row
}
