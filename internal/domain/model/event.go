package model

import "github.com/google/uuid"

// Event is emitted to the notification collaborator after every committed
// transition. Content formatting is the collaborator's responsibility.
type Event struct {
	Name    string
	OrderID uuid.UUID
	Notify  []Role
}
