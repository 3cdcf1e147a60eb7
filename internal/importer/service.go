package importer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/pkg/metrics"
)

// Committer writes accepted courses in one call.
type Committer interface {
	BatchUpsert(ctx context.Context, courses []course.Course) (internal.BatchResult, error)
}

// CommitterFunc picks the committer for a principal, usually their workspace.
type CommitterFunc func(ctx context.Context, p *auth.Principal) (Committer, error)

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type repositoryCommitter struct {
	repo course.Repository
}

// NewRepositoryCommitter commits straight to a repository, for callers
// without a workspace such as the CLI.
func NewRepositoryCommitter(repo course.Repository) Committer {
	return repositoryCommitter{repo: repo}
}

func (c repositoryCommitter) BatchUpsert(ctx context.Context, courses []course.Course) (internal.BatchResult, error) {
	if err := c.repo.BatchUpsert(ctx, courses); err != nil {
		return internal.BatchResult{Failed: len(courses)}, internal.NewSyncError("batch save failed, nothing was written", err)
	}
	return internal.BatchResult{Succeeded: len(courses)}, nil
}

// sampleRows are shown in the downloadable template.
var sampleRows = []string{
	"Excel進階實戰,神資,600-數位科技事業群,提升資料處理效率,2024-01-15,2024-01-15,09:00-17:00,7,30,陳大文,數據中心,12000,內訓,",
	"溝通技巧,新達,Z10-統合通訊處,強化跨部門溝通,2024-01-20,2024-01-20,13:30-16:30,3,20,林小美,HR,5000,外訓,王小明|李大偉",
}

// Template is the header line followed by sample rows.
func Template() string {
	return strings.Join(append([]string{strings.Join(course.HeaderRow(), ",")}, sampleRows...), "\n") + "\n"
}

type Service struct {
	pipeline   *Pipeline
	sessions   *SessionStore
	committers CommitterFunc
	publisher  Publisher
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(pipeline *Pipeline, sessions *SessionStore, committers CommitterFunc, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		pipeline:   pipeline,
		sessions:   sessions,
		committers: committers,
		publisher:  publisher,
		now:        sessions.now,
		logger:     logger,
	}
}

// Create parses input into a new session in preview. Input that yields no
// rows at all is refused without creating a session.
func (s *Service) Create(p *auth.Principal, input string) (Session, error) {
	preview, err := s.pipeline.Run(input, p)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		OwnerID:   p.ID,
		Step:      StepInput,
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sess.showPreview(preview, now); err != nil {
		return Session{}, err
	}
	s.sessions.Put(sess)
	return *sess, nil
}

// Resubmit parses edited input for a session that went back to input.
func (s *Service) Resubmit(p *auth.Principal, id, input string) (Session, error) {
	if _, err := s.sessions.Get(id, p.ID); err != nil {
		return Session{}, err
	}
	preview, err := s.pipeline.Run(input, p)
	if err != nil {
		return Session{}, err
	}
	return s.sessions.Update(id, p.ID, func(sess *Session) error {
		if err := sess.showPreview(preview, s.now()); err != nil {
			return err
		}
		sess.Input = input
		return nil
	})
}

func (s *Service) Get(p *auth.Principal, id string) (Session, error) {
	return s.sessions.Get(id, p.ID)
}

func (s *Service) Back(p *auth.Principal, id string) (Session, error) {
	return s.sessions.Update(id, p.ID, func(sess *Session) error {
		return sess.Back(s.now())
	})
}

func (s *Service) Discard(p *auth.Principal, id string) error {
	return s.sessions.Delete(id, p.ID)
}

// Commit writes the accepted courses. On failure the session stays in
// preview and the commit can be retried. A preview without accepted rows
// finishes without writing anything.
func (s *Service) Commit(ctx context.Context, p *auth.Principal, id string) (Session, error) {
	sess, err := s.sessions.Update(id, p.ID, func(sess *Session) error {
		return sess.beginCommit()
	})
	if err != nil {
		return sess, err
	}

	courses := sess.Preview.Courses()
	rejected := len(sess.Preview.Rejected)

	var res internal.BatchResult
	if len(courses) > 0 {
		res, err = s.commit(ctx, p, courses)
	}
	metrics.ImportCommit(err)

	if err != nil {
		s.logger.Error("import commit failed", "user_id", p.ID, "session_id", id, "error", err)
		updated, _ := s.sessions.Update(id, p.ID, func(sess *Session) error {
			sess.commitFailed(err, s.now())
			return nil
		})
		return updated, err
	}

	updated, err := s.sessions.Update(id, p.ID, func(sess *Session) error {
		sess.finish(CommitResult{BatchResult: res, Rejected: rejected}, s.now())
		return nil
	})
	if err != nil {
		return updated, err
	}

	s.logger.Info("import committed", "user_id", p.ID, "session_id", id, "accepted", res.Succeeded, "rejected", rejected)
	if s.publisher != nil {
		if perr := s.publisher.Publish(ctx, events.NewImportCommittedEvent(id, p.ID, res.Succeeded, rejected)); perr != nil {
			s.logger.Warn("failed to publish import commit", "error", perr)
		}
	}
	return updated, nil
}

func (s *Service) commit(ctx context.Context, p *auth.Principal, courses []course.Course) (internal.BatchResult, error) {
	committer, err := s.committers(ctx, p)
	if err != nil {
		return internal.BatchResult{Failed: len(courses)}, err
	}
	return committer.BatchUpsert(ctx, courses)
}
