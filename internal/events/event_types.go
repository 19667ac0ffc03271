package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCollectionLoaded EventType = "collection_loaded"
	EventEntityCreated    EventType = "entity_created"
	EventEntityUpdated    EventType = "entity_updated"
	EventEntitiesDeleted  EventType = "entities_deleted"
	EventEntitiesImported EventType = "entities_imported"
	EventOperationFailed  EventType = "operation_failed"
	EventSessionExpired   EventType = "session_expired"
)

// Event represents an outcome emitted by a page manager or the session layer.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Resource  string      `json:"resource,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// CollectionLoadedPayload payload.
type CollectionLoadedPayload struct {
	Count int `json:"count"`
}

// EntityPayload payload for create and update.
type EntityPayload struct {
	EntityID string `json:"entity_id"`
}

// EntitiesDeletedPayload payload.
type EntitiesDeletedPayload struct {
	Requested int      `json:"requested"`
	Deleted   []string `json:"deleted"`
	Failed    []string `json:"failed,omitempty"`
}

// EntitiesImportedPayload payload.
type EntitiesImportedPayload struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// OperationFailedPayload payload.
type OperationFailedPayload struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}
