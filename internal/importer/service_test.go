package importer_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/importer"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeCommitter struct {
	err     error
	calls   int
	written []course.Course
}

func (f *fakeCommitter) BatchUpsert(_ context.Context, cs []course.Course) (internal.BatchResult, error) {
	f.calls++
	if f.err != nil {
		return internal.BatchResult{Failed: len(cs)}, f.err
	}
	f.written = append(f.written, cs...)
	return internal.BatchResult{Succeeded: len(cs)}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

const mixedInput = "新人訓練,神資,600-數位科技事業群\n財務講座,新達,Z10-統合通訊處\n"

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		now       time.Time
		committer *fakeCommitter
		publisher *recordingPublisher
		sessions  *importer.SessionStore
		svc       *importer.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = fixedNow
		committer = &fakeCommitter{}
		publisher = &recordingPublisher{}
		sessions = importer.NewSessionStore(30*time.Minute, func() time.Time { return now })
		svc = importer.NewService(
			importer.NewPipeline(newNormalizer(), logger.Discard()),
			sessions,
			func(context.Context, *auth.Principal) (importer.Committer, error) { return committer, nil },
			publisher,
			logger.Discard(),
		)
	})

	It("walks input through preview to result", func() {
		sess, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())
		Expect(sess.Step).To(Equal(importer.StepPreview))
		Expect(sess.OwnerID).To(Equal(hr.ID))
		Expect(sess.Preview.Accepted).To(HaveLen(1))
		Expect(sess.Preview.Rejected).To(HaveLen(1))

		done, err := svc.Commit(ctx, hr, sess.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(done.Step).To(Equal(importer.StepResult))
		Expect(done.Result.Succeeded).To(Equal(1))
		Expect(done.Result.Rejected).To(Equal(1))

		Expect(committer.calls).To(Equal(1))
		Expect(committer.written).To(HaveLen(1))
		Expect(committer.written[0].Name).To(Equal("新人訓練"))

		Expect(publisher.events).To(HaveLen(1))
		Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeImportCommitted))
	})

	It("creates no session when nothing parses", func() {
		_, err := svc.Create(hr, "")
		Expect(err).To(MatchError(importer.ErrEmptyInput))
		Expect(sessions.Sweep()).To(BeZero())
	})

	It("stays in preview after a failed commit and can retry", func() {
		committer.err = internal.NewSyncError("batch save failed, nothing was written", errors.New("boom"))
		sess, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())

		failed, err := svc.Commit(ctx, hr, sess.ID)
		Expect(err).To(HaveOccurred())
		Expect(failed.Step).To(Equal(importer.StepPreview))
		Expect(failed.LastError).NotTo(BeEmpty())
		Expect(failed.Preview.Accepted).To(HaveLen(1))

		committer.err = nil
		done, err := svc.Commit(ctx, hr, sess.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(done.Step).To(Equal(importer.StepResult))
		Expect(done.LastError).To(BeEmpty())
		Expect(committer.calls).To(Equal(2))
	})

	It("finishes without writing when every row was rejected", func() {
		sess, err := svc.Create(hr, "財務講座,新達,Z10-統合通訊處\n")
		Expect(err).NotTo(HaveOccurred())

		done, err := svc.Commit(ctx, hr, sess.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(done.Result.Succeeded).To(BeZero())
		Expect(done.Result.Rejected).To(Equal(1))
		Expect(committer.calls).To(BeZero())
	})

	It("goes back to input and reparses edited text", func() {
		sess, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())

		back, err := svc.Back(hr, sess.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(back.Step).To(Equal(importer.StepInput))
		Expect(back.Preview).To(BeNil())
		Expect(back.Input).To(Equal(mixedInput))

		again, err := svc.Resubmit(hr, sess.ID, "新人訓練,神資,600-數位科技事業群\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Step).To(Equal(importer.StepPreview))
		Expect(again.Preview.Rejected).To(BeEmpty())
	})

	It("refuses to resubmit while a preview is showing", func() {
		sess, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Resubmit(hr, sess.ID, mixedInput)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidImportState))
	})

	It("treats the result step as final", func() {
		sess, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.Commit(ctx, hr, sess.ID)
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Back(hr, sess.ID)
		Expect(err).To(HaveOccurred())
		_, err = svc.Commit(ctx, hr, sess.ID)
		Expect(err).To(HaveOccurred())
		Expect(committer.calls).To(Equal(1))
	})

	It("hides sessions from other users", func() {
		sess, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Get(manager, sess.ID)
		Expect(err).To(MatchError(importer.ErrSessionNotFound))
		_, err = svc.Commit(ctx, manager, sess.ID)
		Expect(err).To(MatchError(importer.ErrSessionNotFound))
		Expect(svc.Discard(manager, sess.ID)).To(MatchError(importer.ErrSessionNotFound))

		Expect(svc.Discard(hr, sess.ID)).To(Succeed())
		_, err = svc.Get(hr, sess.ID)
		Expect(err).To(MatchError(importer.ErrSessionNotFound))
	})

	It("expires idle sessions", func() {
		sess, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(31 * time.Minute)
		_, err = svc.Get(hr, sess.ID)
		Expect(err).To(MatchError(importer.ErrSessionNotFound))
	})

	It("sweeps expired sessions", func() {
		_, err := svc.Create(hr, mixedInput)
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.Create(admin, mixedInput)
		Expect(err).NotTo(HaveOccurred())

		Expect(sessions.Sweep()).To(BeZero())
		now = now.Add(time.Hour)
		Expect(sessions.Sweep()).To(Equal(2))
	})
})
