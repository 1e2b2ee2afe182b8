package schema

// Event type constants published by editors.
const (
	EventNodeAdded      = "node_added"
	EventNodeRemoved    = "node_removed"
	EventNodeMoved      = "node_moved"
	EventNodeResized    = "node_resized"
	EventNodeSelected   = "node_selected"
	EventNodeUnselected = "node_unselected"

	EventLinkCreated    = "link_created"
	EventLinkDeleted    = "link_deleted"
	EventLinkSelected   = "link_selected"
	EventLinkUnselected = "link_unselected"

	EventRelationSet     = "relation_set"
	EventRelationCleared = "relation_cleared"

	EventConnectionRejected = "connection_rejected"
	EventSelectionChanged   = "selection_changed"
	EventStatusChanged      = "status_changed"
	EventScaleChanged       = "scale_changed"
)
