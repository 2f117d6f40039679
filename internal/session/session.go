// Package session tracks uploaded workflows between requests. Each upload
// gets an opaque id; nothing is shared across sessions.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/alterflow/internal/workflow"
	"github.com/vk/alterflow/internal/yxmd"
)

// ErrNotFound is returned when a session id is unknown or was evicted.
var ErrNotFound = errors.New("session: not found")

// DefaultMaxSessions bounds the registry when no limit is configured.
const DefaultMaxSessions = 64

// Workflow is the per-upload state served to handlers.
type Workflow struct {
	ID       string
	Name     string
	Document *yxmd.Document
	Graph    *workflow.Graph
}

// Registry is a bounded in-memory session store. When full, the oldest
// session is evicted to make room.
type Registry struct {
	mu    sync.Mutex
	max   int
	byID  map[string]*Workflow
	order []string // insertion order, oldest first
}

// NewRegistry returns a registry holding at most max sessions; max <= 0
// falls back to DefaultMaxSessions.
func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Registry{
		max:  max,
		byID: make(map[string]*Workflow),
	}
}

// Add registers a parsed workflow and returns its new session id.
func (r *Registry) Add(name string, doc *yxmd.Document, g *workflow.Graph) *Workflow {
	w := &Workflow{
		ID:       uuid.NewString(),
		Name:     name,
		Document: doc,
		Graph:    g,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.order) >= r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.byID, oldest)
	}
	r.byID[w.ID] = w
	r.order = append(r.order, w.ID)
	return w
}

// Get returns the session for id, or ErrNotFound.
func (r *Registry) Get(id string) (*Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

// Remove drops a session; removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
