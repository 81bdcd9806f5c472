// Package collection provides the ordered record list, its selection
// cursor, and the controller orchestrating user-level operations on it.
// External viewers observe the collection through payload-free change
// notifications and re-read its state on receipt.
package collection

// EventType identifies collection change notifications.
type EventType int

const (
	EventObjectAdded EventType = iota
	EventObjectRemoved
	EventRefresh
	EventSelectionChanged
)

func (e EventType) String() string {
	switch e {
	case EventObjectAdded:
		return "object-added"
	case EventObjectRemoved:
		return "object-removed"
	case EventRefresh:
		return "refresh"
	case EventSelectionChanged:
		return "selection-changed"
	default:
		return "unknown"
	}
}

// Listener is called when an event occurs. Events carry no payload;
// consumers re-read collection state.
type Listener func()
