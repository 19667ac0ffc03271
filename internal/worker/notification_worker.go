package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/observability"
	"github.com/tillwork/posadmin/internal/service"
)

// SessionCounter reports the number of open console sessions.
type SessionCounter interface {
	Sessions() int
}

// NotificationWorker subscribes the activity feed to manager events and
// periodically logs session and remote call counters.
type NotificationWorker struct {
	notifications *service.NotificationService
	sessions      SessionCounter
	metrics       *observability.Metrics
	logger        *zap.Logger
	interval      time.Duration

	once    sync.Once
	started bool
	stop    context.CancelFunc
	done    chan struct{}
}

// NewNotificationWorker builds the worker. A zero interval disables the
// periodic report.
func NewNotificationWorker(notifications *service.NotificationService, sessions SessionCounter, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		sessions:      sessions,
		metrics:       metrics,
		logger:        observability.OrNop(logger),
		interval:      interval,
		done:          make(chan struct{}),
	}
}

// Start registers notification handlers and starts the report loop.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.started = true
	if w.notifications != nil {
		w.notifications.RegisterHandlers()
	}
	if w.interval <= 0 || w.sessions == nil {
		close(w.done)
		return
	}
	ctx, w.stop = context.WithCancel(ctx)
	go w.loop(ctx)
}

// Stop ends the report loop and waits for it.
func (w *NotificationWorker) Stop() {
	if !w.started {
		return
	}
	w.once.Do(func() {
		if w.stop != nil {
			w.stop()
		}
	})
	<-w.done
}

func (w *NotificationWorker) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *NotificationWorker) report() {
	snap := w.metrics.Snapshot()
	var calls int64
	for _, n := range snap.RemoteCalls {
		calls += n
	}
	w.logger.Info("console activity",
		zap.Int("open_sessions", w.sessions.Sessions()),
		zap.Int64("remote_calls", calls),
		zap.Int("error_kinds", len(snap.Errors)))
}
