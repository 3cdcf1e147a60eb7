package importer

import "github.com/frahmantamala/training-management/internal/course"

// RawRow holds the text of one input line, one slot per column of the row
// format. Missing trailing fields are empty.
type RawRow [course.ColumnCount]string

func (r RawRow) Get(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Line is a non-blank input line split into fields.
type Line struct {
	Number int    // 1-based position in the input
	Text   string // trimmed original text
	Fields RawRow
	Count  int // fields physically present, before padding
}
