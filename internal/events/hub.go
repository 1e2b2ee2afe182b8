// Package events fans out editor notifications to hosts and renderers.
package events

import "context"

// Event is a notification raised by an editor.
type Event struct {
	EditorID  string `json:"editor_id"`
	NodeID    string `json:"node_id,omitempty"`
	LinkID    string `json:"link_id,omitempty"`
	EventType string `json:"event_type"`
	Payload   any    `json:"payload,omitempty"`
}

// Filter selects the events a subscriber receives. Empty fields match all.
type Filter struct {
	EditorID   string   `json:"editor_id,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

// Hub is a publish/subscribe channel for editor events.
type Hub interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, func(), error)
}
