package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/config"
	"github.com/tillwork/posadmin/internal/events"
	"github.com/tillwork/posadmin/internal/observability"
)

// Notification is one entry of a session's activity feed.
type Notification struct {
	ID        string           `json:"id"`
	Type      events.EventType `json:"type"`
	Resource  string           `json:"resource,omitempty"`
	Message   string           `json:"message"`
	Error     bool             `json:"error"`
	Timestamp string           `json:"timestamp"`
}

// NotificationService audits manager events to the log and keeps the most
// recent ones per console session for the activity panel.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	feedSize   int

	mu    sync.Mutex
	feeds map[string][]Notification
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	size := cfg.FeedSize
	if size <= 0 {
		size = 50
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     observability.OrNop(logger),
		feedSize:   size,
		feeds:      make(map[string][]Notification),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventEntityCreated, n.handleEntityChanged)
	n.dispatcher.Subscribe(events.EventEntityUpdated, n.handleEntityChanged)
	n.dispatcher.Subscribe(events.EventEntitiesDeleted, n.handleEntitiesDeleted)
	n.dispatcher.Subscribe(events.EventEntitiesImported, n.handleEntitiesImported)
	n.dispatcher.Subscribe(events.EventOperationFailed, n.handleOperationFailed)
	n.dispatcher.Subscribe(events.EventSessionExpired, n.handleSessionExpired)
}

func (n *NotificationService) handleEntityChanged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.EntityPayload)
	verb := "created"
	if event.Type == events.EventEntityUpdated {
		verb = "updated"
	}
	n.logger.Info(string(event.Type),
		zap.String("session_id", event.SessionID),
		zap.String("resource", event.Resource),
		zap.String("entity_id", payload.EntityID))
	n.record(event, fmt.Sprintf("%s %s %s", event.Resource, payload.EntityID, verb), false)
	return nil
}

func (n *NotificationService) handleEntitiesDeleted(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.EntitiesDeletedPayload)
	n.logger.Info(string(event.Type),
		zap.String("session_id", event.SessionID),
		zap.String("resource", event.Resource),
		zap.Strings("deleted", payload.Deleted),
		zap.Strings("failed", payload.Failed))
	msg := fmt.Sprintf("%d %s deleted", len(payload.Deleted), event.Resource)
	if len(payload.Failed) > 0 {
		msg = fmt.Sprintf("%d of %d %s deleted", len(payload.Deleted), payload.Requested, event.Resource)
	}
	n.record(event, msg, len(payload.Failed) > 0)
	return nil
}

func (n *NotificationService) handleEntitiesImported(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.EntitiesImportedPayload)
	n.logger.Info(string(event.Type),
		zap.String("session_id", event.SessionID),
		zap.String("resource", event.Resource),
		zap.Int("imported", payload.Imported),
		zap.Int("failed", payload.Failed))
	n.record(event, fmt.Sprintf("%d %s imported, %d failed", payload.Imported, event.Resource, payload.Failed), payload.Failed > 0)
	return nil
}

func (n *NotificationService) handleOperationFailed(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.OperationFailedPayload)
	n.logger.Warn(string(event.Type),
		zap.String("session_id", event.SessionID),
		zap.String("resource", event.Resource),
		zap.String("operation", payload.Operation),
		zap.String("message", payload.Message))
	n.record(event, payload.Message, true)
	return nil
}

func (n *NotificationService) handleSessionExpired(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("session_id", event.SessionID))
	n.Forget(event.SessionID)
	return nil
}

func (n *NotificationService) record(event events.Event, message string, isError bool) {
	if event.SessionID == "" {
		return
	}
	entry := Notification{
		ID:        event.ID,
		Type:      event.Type,
		Resource:  event.Resource,
		Message:   message,
		Error:     isError,
		Timestamp: event.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	feed := append(n.feeds[event.SessionID], entry)
	if len(feed) > n.feedSize {
		feed = append([]Notification(nil), feed[len(feed)-n.feedSize:]...)
	}
	n.feeds[event.SessionID] = feed
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (n *NotificationService) Recent(sessionID string, limit int) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	feed := n.feeds[sessionID]
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}
	out := make([]Notification, 0, limit)
	for i := len(feed) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, feed[i])
	}
	return out
}

// Forget drops a session's feed.
func (n *NotificationService) Forget(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.feeds, sessionID)
}
