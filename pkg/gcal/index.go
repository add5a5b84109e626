package gcal

import "sync"

// eventIndex remembers which event belongs to which task UUID so repeated
// pushes in one session can fetch the event directly instead of searching.
type eventIndex struct {
	mu       sync.RWMutex
	mappings map[string]string
}

func newEventIndex() *eventIndex {
	return &eventIndex{mappings: make(map[string]string)}
}

func (idx *eventIndex) Get(taskUUID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.mappings[taskUUID]
}

func (idx *eventIndex) Set(taskUUID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.mappings[taskUUID] = eventID
}

func (idx *eventIndex) Remove(taskUUID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.mappings, taskUUID)
}
