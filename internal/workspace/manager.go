package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/course"
)

type Bus interface {
	Publisher
	Subscribe(eventType string, handler events.Handler)
}

// Manager keeps one Controller per user and pushes a fresh snapshot to all
// of them whenever any workspace reports a course change.
type Manager struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	runCtx      context.Context
	refreshMu   sync.Mutex

	store   course.Repository
	bus     Bus
	timeout time.Duration
	logger  *slog.Logger
}

func NewManager(store course.Repository, bus Bus, timeout time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		controllers: make(map[string]*Controller),
		store:       store,
		bus:         bus,
		timeout:     timeout,
		logger:      logger,
	}
}

// Start subscribes to course changes. Controllers created afterwards consume
// snapshots until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.runCtx = ctx
	for _, c := range m.controllers {
		go c.Run(ctx)
	}
	m.mu.Unlock()

	m.bus.Subscribe(events.EventTypeCoursesChanged, func(ctx context.Context, _ events.Event) error {
		return m.Refresh(ctx)
	})
}

// Controller returns p's workspace, loading the collection on first use.
func (m *Manager) Controller(ctx context.Context, p *auth.Principal) (*Controller, error) {
	m.mu.Lock()
	c, ok := m.controllers[p.ID]
	m.mu.Unlock()
	if ok {
		c.SetPrincipal(p)
		return c, nil
	}

	records, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.controllers[p.ID]; ok {
		existing.SetPrincipal(p)
		return existing, nil
	}
	c = NewController(p, records, m.store, m.bus, m.timeout, m.logger)
	m.controllers[p.ID] = c
	if m.runCtx != nil {
		go c.Run(m.runCtx)
	}
	m.logger.Info("workspace opened", "user_id", p.ID, "courses", len(records))
	return c, nil
}

func (m *Manager) For(ctx context.Context, p *auth.Principal) (course.Collection, error) {
	return m.Controller(ctx, p)
}

// Refresh reloads the collection and offers it to every open workspace.
func (m *Manager) Refresh(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	records, err := m.load(ctx)
	if err != nil {
		m.logger.Error("workspace refresh failed", "error", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.controllers {
		c.Offer(records)
	}
	return nil
}

func (m *Manager) load(ctx context.Context) ([]course.Course, error) {
	ctx, cancel := internal.WithTimeout(ctx, m.timeout)
	defer cancel()
	records, err := m.store.ListAll(ctx)
	if err != nil {
		return nil, internal.NewSyncError("failed to load courses", err)
	}
	return records, nil
}
