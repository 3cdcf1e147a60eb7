package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/core/events"
)

const defaultSweepInterval = time.Minute

// startWorkers launches the background jobs that live as long as the server:
// workspace snapshot fan-out, import session expiry and the event audit log.
func startWorkers(ctx context.Context, deps *Dependencies) {
	deps.Manager.Start(ctx)

	interval := deps.Config.Import.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go deps.Sessions.Run(ctx, interval)

	subscribeAuditLog(deps.Bus, deps.Logger)

	deps.Logger.Info("background workers started", "session_sweep_interval", interval)
}

type subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// subscribeAuditLog records every course mutation and committed import.
func subscribeAuditLog(bus subscriber, lg *slog.Logger) {
	log := func(ctx context.Context, event events.Event) error {
		lg.InfoContext(ctx, "event received",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"occurred_at", event.OccurredAt(),
			"request_user_id", internal.UserIDFromContext(ctx),
			"request_username", internal.UsernameFromContext(ctx),
			"payload", event.Payload())
		return nil
	}
	bus.Subscribe(events.EventTypeCoursesChanged, log)
	bus.Subscribe(events.EventTypeImportCommitted, log)
}
