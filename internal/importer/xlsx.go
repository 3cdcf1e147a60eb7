package importer

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/course"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// IsWorkbook reports whether an upload should be read as a spreadsheet
// rather than as text.
func IsWorkbook(filename, contentType string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".xlsx") || strings.HasPrefix(contentType, xlsxContentType)
}

// WorkbookText turns the first sheet of a workbook into import text, one
// record per sheet row. Row numbers in the report match the sheet as long as
// no cell holds a line break.
func WorkbookText(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", internal.NewValidationError("無法讀取 Excel 檔案", internal.ErrCodeValidationFailed).WithCause(err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return "", internal.NewValidationError("無法讀取 Excel 工作表", internal.ErrCodeValidationFailed).WithCause(err)
	}

	var buf bytes.Buffer
	for _, row := range rows {
		if err := course.WriteRecord(&buf, row); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
