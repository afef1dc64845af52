package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for tests and for running without a
// backend. Documents live in a flat path-keyed map; collection reads and
// queries scan the direct children of the collection path.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Read(ctx context.Context, path string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if doc, ok := m.docs[path]; ok {
		return Snapshot{Key: lastSegment(path), Data: doc}, nil
	}

	// No document at the exact path; treat it as a collection read.
	children := m.childrenLocked(path)
	return Snapshot{Key: lastSegment(path), Children: children}, nil
}

func (m *MemoryStore) Write(ctx context.Context, path string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = data
	return nil
}

func (m *MemoryStore) MultiWrite(ctx context.Context, updates map[string]interface{}) error {
	// Marshal everything up front so the map is never partially applied.
	marshalled := make(map[string]json.RawMessage, len(updates))
	for path, doc := range updates {
		if doc == nil {
			marshalled[path] = nil
			continue
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		marshalled[path] = data
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for path, data := range marshalled {
		if data == nil {
			delete(m.docs, path)
		} else {
			m.docs[path] = data
		}
	}
	return nil
}

func (m *MemoryStore) QueryEqual(ctx context.Context, collection, field string, value interface{}) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Snapshot
	for _, child := range m.childrenLocked(collection) {
		if fieldEquals(child.Data, field, value) {
			matches = append(matches, child)
		}
	}
	return matches, nil
}

func (m *MemoryStore) PushID(ctx context.Context, collection string) (string, error) {
	return uuid.NewString(), nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) childrenLocked(collection string) []Snapshot {
	prefix := collection + "/"
	var children []Snapshot
	for path, doc := range m.docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		children = append(children, Snapshot{Key: rest, Data: doc})
	}
	// Key order for deterministic iteration in tests.
	sort.Slice(children, func(i, j int) bool { return children[i].Key < children[j].Key })
	return children
}
