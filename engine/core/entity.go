package core

import "sync/atomic"

// EntityID is a unique identifier for agents
type EntityID uint64

// NoEntity is the zero handle, never issued by NewEntityID
const NoEntity EntityID = 0

var entityCounter uint64

// NewEntityID generates a unique entity ID
func NewEntityID() EntityID {
	return EntityID(atomic.AddUint64(&entityCounter, 1))
}
