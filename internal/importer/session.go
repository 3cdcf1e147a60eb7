package importer

import (
	"time"

	"github.com/frahmantamala/training-management/internal"
)

type Step string

const (
	StepInput   Step = "input"
	StepPreview Step = "preview"
	StepResult  Step = "result"
)

// CommitResult is what a finished import reports.
type CommitResult struct {
	internal.BatchResult
	Rejected int `json:"rejected"`
}

// Session walks one batch import through input, preview and result. Back
// returns from preview to input; result is final.
type Session struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Step      Step          `json:"step"`
	Input     string        `json:"input"`
	Preview   *Preview      `json:"preview,omitempty"`
	Result    *CommitResult `json:"result,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	committing bool
}

func errInvalidStep(action string, step Step) error {
	return internal.NewConflictError("cannot "+action+" an import in step "+string(step), internal.ErrCodeInvalidImportState)
}

func (s *Session) showPreview(preview *Preview, now time.Time) error {
	if s.Step != StepInput {
		return errInvalidStep("re-parse", s.Step)
	}
	s.Step = StepPreview
	s.Preview = preview
	s.LastError = ""
	s.UpdatedAt = now
	return nil
}

// Back discards the preview and keeps the input for editing.
func (s *Session) Back(now time.Time) error {
	if s.Step != StepPreview || s.committing {
		return errInvalidStep("go back from", s.Step)
	}
	s.Step = StepInput
	s.Preview = nil
	s.LastError = ""
	s.UpdatedAt = now
	return nil
}

// beginCommit claims the session for one in-flight commit.
func (s *Session) beginCommit() error {
	if s.Step != StepPreview {
		return errInvalidStep("commit", s.Step)
	}
	if s.committing {
		return internal.NewConflictError("import commit already in progress", internal.ErrCodeInvalidImportState)
	}
	s.committing = true
	return nil
}

func (s *Session) finish(res CommitResult, now time.Time) {
	s.committing = false
	s.Step = StepResult
	s.Result = &res
	s.LastError = ""
	s.UpdatedAt = now
}

// commitFailed keeps the session in preview so commit can be retried.
func (s *Session) commitFailed(err error, now time.Time) {
	s.committing = false
	s.LastError = err.Error()
	s.UpdatedAt = now
}
