package workspace

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/pkg/metrics"
)

// Publisher announces accepted writes to other workspaces.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Controller owns one principal's working copy of the course collection,
// the active view and the selection. Methods are serialised by mu, remote
// calls included.
type Controller struct {
	mu        sync.Mutex
	principal *auth.Principal
	records   []course.Course
	selection *Selection
	view      View

	store     course.Repository
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger

	snapshots chan []course.Course
}

func NewController(p *auth.Principal, records []course.Course, store course.Repository, publisher Publisher, timeout time.Duration, logger *slog.Logger) *Controller {
	return &Controller{
		principal: p,
		records:   slices.Clone(records),
		selection: NewSelection(),
		view:      ViewDashboard,
		store:     store,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger.With("user_id", p.ID),
		snapshots: make(chan []course.Course, 1),
	}
}

func (c *Controller) Principal() *auth.Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.principal
}

// SetPrincipal refreshes role and permissions, which may narrow the scope.
func (c *Controller) SetPrincipal(p *auth.Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.principal = p
	c.selection.Prune(c.deletableLocked())
}

func (c *Controller) Visible() []course.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	return course.FilterVisible(c.records, c.principal)
}

func (c *Controller) Find(id string) (course.Course, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 || !course.CanView(c.principal, c.records[i]) {
		return course.Course{}, false
	}
	return c.records[i], true
}

// Save stores cr locally first. A remote failure is reported but the local
// copy is kept.
func (c *Controller) Save(ctx context.Context, cr course.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(cr.ID); i >= 0 {
		c.records[i] = cr
	} else {
		c.records = append(c.records, cr)
	}

	err := c.remote(ctx, func(ctx context.Context) error { return c.store.Upsert(ctx, cr) })
	metrics.CourseMutation(events.OpUpsert, err)
	if err != nil {
		c.logger.Error("course upsert failed, keeping local copy", "course_id", cr.ID, "error", err)
		return internal.NewSyncError("course saved locally but the remote copy may be stale", err)
	}
	c.announce(ctx, events.OpUpsert, []string{cr.ID})
	return nil
}

// Delete removes id locally first, with the same failure policy as Save.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = slices.DeleteFunc(c.records, func(r course.Course) bool { return r.ID == id })
	c.selection.Prune(c.deletableLocked())

	err := c.remote(ctx, func(ctx context.Context) error { return c.store.Delete(ctx, id) })
	metrics.CourseMutation(events.OpDelete, err)
	if err != nil {
		c.logger.Error("course delete failed, keeping local removal", "course_id", id, "error", err)
		return internal.NewSyncError("course removed locally but the remote copy may be stale", err)
	}
	c.announce(ctx, events.OpDelete, []string{id})
	return nil
}

// BatchUpsert writes courses remotely and merges them locally only once the
// backend accepted them, so a retry never duplicates local entries.
func (c *Controller) BatchUpsert(ctx context.Context, courses []course.Course) (internal.BatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(courses) == 0 {
		return internal.BatchResult{}, nil
	}

	err := c.remote(ctx, func(ctx context.Context) error { return c.store.BatchUpsert(ctx, courses) })
	metrics.CourseMutation(events.OpBatchUpsert, err)
	if err != nil {
		res := internal.BatchResult{Failed: len(courses)}
		c.logger.Error("batch upsert failed", "count", len(courses), "error", err)
		return res, internal.NewSyncError("batch save failed, nothing was written", err).WithDetails(res)
	}

	ids := make([]string, 0, len(courses))
	for _, cr := range courses {
		if i := c.indexLocked(cr.ID); i >= 0 {
			c.records[i] = cr
		} else {
			c.records = append(c.records, cr)
		}
		ids = append(ids, cr.ID)
	}
	c.selection.Clear()
	c.announce(ctx, events.OpBatchUpsert, ids)
	return internal.BatchResult{Succeeded: len(courses)}, nil
}

// BatchDelete removes every selected course in one backend call. Without
// confirm nothing happens. On failure the local collection and the
// selection are left as they were.
func (c *Controller) BatchDelete(ctx context.Context, confirm bool) (internal.BatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !confirm {
		return internal.BatchResult{}, internal.NewValidationError("batch delete must be confirmed", internal.ErrCodeConfirmationRequired)
	}

	c.selection.Prune(c.deletableLocked())
	ids := c.selection.IDs()
	if len(ids) == 0 {
		return internal.BatchResult{}, nil
	}

	err := c.remote(ctx, func(ctx context.Context) error { return c.store.BatchDelete(ctx, ids) })
	metrics.CourseMutation(events.OpBatchDelete, err)
	if err != nil {
		res := internal.BatchResult{Failed: len(ids)}
		c.logger.Error("batch delete failed", "count", len(ids), "error", err)
		return res, internal.NewSyncError("batch delete failed, no courses were removed", err).WithDetails(res)
	}

	c.records = slices.DeleteFunc(c.records, func(r course.Course) bool { return slices.Contains(ids, r.ID) })
	c.selection.Clear()
	c.logger.Info("batch delete completed", "count", len(ids))
	c.announce(ctx, events.OpBatchDelete, ids)
	return internal.BatchResult{Succeeded: len(ids)}, nil
}

// Toggle flips the selection of id and reports whether it was selectable.
func (c *Controller) Toggle(id string) (bool, SelectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	scope := c.deletableLocked()
	toggled := c.selection.Toggle(id, scope)
	return toggled, c.stateLocked(scope)
}

// SetAllSelected selects every deletable visible course, or clears.
func (c *Controller) SetAllSelected(selected bool) SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	scope := c.deletableLocked()
	if selected {
		c.selection.SelectAll(scope)
	} else {
		c.selection.Clear()
	}
	return c.stateLocked(scope)
}

func (c *Controller) SetView(v View) SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v != c.view {
		c.view = v
		c.selection.Clear()
	}
	return c.stateLocked(c.deletableLocked())
}

func (c *Controller) Selection() SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(c.deletableLocked())
}

// ReplaceSnapshot swaps in a full collection pushed by the backend.
func (c *Controller) ReplaceSnapshot(records []course.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = slices.Clone(records)
	c.selection.Prune(c.deletableLocked())
}

// Offer queues a snapshot for Run without blocking. An unconsumed older
// snapshot is replaced.
func (c *Controller) Offer(records []course.Course) {
	for {
		select {
		case c.snapshots <- records:
			return
		default:
		}
		select {
		case <-c.snapshots:
		default:
		}
	}
}

// Run applies offered snapshots until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case records := <-c.snapshots:
			c.ReplaceSnapshot(records)
		}
	}
}

func (c *Controller) indexLocked(id string) int {
	return slices.IndexFunc(c.records, func(r course.Course) bool { return r.ID == id })
}

func (c *Controller) deletableLocked() []course.Course {
	return course.DeletableVisible(c.records, c.principal)
}

func (c *Controller) stateLocked(scope []course.Course) SelectionState {
	return newSelectionState(c.view, c.selection.IDs(), len(scope))
}

func (c *Controller) remote(ctx context.Context, call func(context.Context) error) error {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()
	return call(ctx)
}

func (c *Controller) announce(ctx context.Context, op string, ids []string) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, events.NewCoursesChangedEvent(op, ids, c.principal.ID)); err != nil {
		c.logger.Warn("failed to publish course change", "op", op, "error", err)
	}
}
