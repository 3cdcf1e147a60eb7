package importer

import (
	"encoding/csv"
	"strings"
	"unicode"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/course"
)

var ErrEmptyInput = internal.NewValidationError("請輸入資料或上傳檔案", internal.ErrCodeEmptyImport)

// Parse splits input into records of fields. A UTF-8 BOM is dropped, CRLF is
// accepted, a leading header line is skipped and blank lines are ignored.
// Fields may be quoted, and a quoted field may span lines, so exported files
// read back unchanged. Each record is numbered by the physical line it starts on.
func Parse(input string) ([]Line, error) {
	input = strings.TrimPrefix(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	physical := strings.Split(input, "\n")
	lines := make([]Line, 0, len(physical))
	headerChecked := false
	for i := 0; i < len(physical); i++ {
		if strings.TrimSpace(physical[i]) == "" {
			continue
		}
		if !headerChecked {
			headerChecked = true
			if strings.Contains(physical[i], course.HeaderLabel) {
				continue
			}
		}

		fields, used := readRecord(physical[i:])
		line := Line{
			Number: i + 1,
			Text:   strings.TrimSpace(strings.Join(physical[i:i+used], "\n")),
			Count:  len(fields),
		}
		for col := 0; col < len(fields) && col < len(line.Fields); col++ {
			line.Fields[col] = strings.TrimSpace(fields[col])
		}
		lines = append(lines, line)
		i += used - 1
	}
	return lines, nil
}

// maxRecordLines bounds how far a quoted field may run before the opening
// quote is treated as stray.
const maxRecordLines = 100

// readRecord reads the record starting at physical[0] and reports how many
// physical lines it used. A quote that never closes, or a multi-line record
// that comes out wider than the row format, falls back to a plain split of
// the first line.
func readRecord(physical []string) ([]string, int) {
	sc := recordScanner{fieldStart: true}
	for used := 1; used <= len(physical) && used <= maxRecordLines; used++ {
		if used == 1 {
			sc.feed(strings.TrimSpace(physical[0]))
		} else {
			sc.feed(strings.TrimRightFunc(physical[used-1], unicode.IsSpace))
		}
		if sc.quoted {
			continue
		}
		fields, err := readCSV(sc.b.String())
		if err != nil || (used > 1 && len(fields) > course.ColumnCount) {
			break
		}
		return fields, used
	}

	first := strings.ReplaceAll(strings.TrimSpace(physical[0]), course.FullWidthComma, ",")
	return strings.Split(first, ","), 1
}

func readCSV(text string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.Read()
}

// recordScanner copies lines of one record, rewriting full-width commas
// outside quoted fields to ',' and tracking whether the text so far ends
// inside a quoted field. Quoting follows encoding/csv with LazyQuotes: a field
// is quoted only when '"' opens it, and the quoted field closes on '"'
// followed by a separator or the end of the line.
type recordScanner struct {
	b          strings.Builder
	quoted     bool
	fieldStart bool
}

func (s *recordScanner) feed(line string) {
	if s.b.Len() > 0 {
		s.b.WriteByte('\n')
	}
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case s.quoted:
			if r == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					s.b.WriteString(`""`)
					i++
					continue
				}
				if i+1 == len(runes) || isSeparator(runes[i+1]) {
					s.quoted = false
				}
			}
			s.b.WriteRune(r)
		case isSeparator(r):
			s.b.WriteByte(',')
			s.fieldStart = true
		case s.fieldStart && r == '"':
			s.quoted, s.fieldStart = true, false
			s.b.WriteRune(r)
		case s.fieldStart && unicode.IsSpace(r):
			s.b.WriteRune(r)
		default:
			s.fieldStart = false
			s.b.WriteRune(r)
		}
	}
}

func isSeparator(r rune) bool {
	return r == ',' || r == '，'
}
