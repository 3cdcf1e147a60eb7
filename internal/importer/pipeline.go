package importer

import (
	"log/slog"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/pkg/metrics"
)

var ErrNothingParsed = internal.NewValidationError("無法解析任何有效資料，請檢查格式。", internal.ErrCodeEmptyImport)

// Entry is an accepted line awaiting commit.
type Entry struct {
	Row              int           `json:"row"`
	Course           course.Course `json:"course"`
	DateOrderWarning bool          `json:"date_order_warning,omitempty"`
}

type Preview struct {
	Accepted []Entry     `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

// Courses returns the accepted records in input order.
func (p *Preview) Courses() []course.Course {
	out := make([]course.Course, 0, len(p.Accepted))
	for _, e := range p.Accepted {
		out = append(out, e.Course)
	}
	return out
}

// Pipeline parses input and sorts every line into accepted or rejected. It
// never stops early and never compares against stored records.
type Pipeline struct {
	normalizer *Normalizer
	logger     *slog.Logger
}

func NewPipeline(normalizer *Normalizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{normalizer: normalizer, logger: logger}
}

func (pl *Pipeline) Run(input string, p *auth.Principal) (*Preview, error) {
	lines, err := Parse(input)
	if err != nil {
		return nil, err
	}

	preview := &Preview{Accepted: []Entry{}, Rejected: []Rejection{}}
	for _, line := range lines {
		c, rejection := pl.normalizer.Normalize(line, p)
		if rejection != nil {
			preview.Rejected = append(preview.Rejected, *rejection)
			continue
		}
		entry := Entry{Row: line.Number, Course: c}
		if c.DatesOutOfOrder() {
			entry.DateOrderWarning = true
			pl.logger.Warn("import row has end date before start date",
				"row", line.Number, "start_date", c.StartDate, "end_date", c.EndDate)
		}
		preview.Accepted = append(preview.Accepted, entry)
	}

	if len(preview.Accepted) == 0 && len(preview.Rejected) == 0 {
		return nil, ErrNothingParsed
	}

	metrics.ImportRows(len(preview.Accepted), len(preview.Rejected))
	pl.logger.Info("import parsed",
		"user_id", p.ID, "accepted", len(preview.Accepted), "rejected", len(preview.Rejected))
	return preview, nil
}
