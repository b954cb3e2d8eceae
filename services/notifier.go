package services

import "ClinicDesk/models"

// Change actions published after a successful write.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notifier is told about every record change. The websocket hub implements
// it; a nil Notifier drops events.
type Notifier interface {
	Publish(collection, action string, id models.ID)
}

func publish(n Notifier, collection, action string, id models.ID) {
	if n != nil {
		n.Publish(collection, action, id)
	}
}
