package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"syncnote/syncnote/config"
)

var (
	ErrNotConnected = errors.New("store is not connected")
	ErrDecode       = errors.New("failed to decode snapshot")
)

// Snapshot is a point-in-time view of one path in the tree. Leaf paths carry a
// document; collection paths carry their direct children.
type Snapshot struct {
	Key      string
	Data     json.RawMessage
	Children []Snapshot
}

func (s Snapshot) Exists() bool {
	if len(s.Children) > 0 {
		return true
	}
	return len(s.Data) > 0 && string(s.Data) != "null"
}

func (s Snapshot) Decode(v interface{}) error {
	if len(s.Data) == 0 || string(s.Data) == "null" {
		return ErrDecode
	}
	return json.Unmarshal(s.Data, v)
}

// Store is the tree-store primitive the services are built on. Paths are
// slash-separated; documents are schemaless JSON subtrees.
//
// Guarantees assumed by the callers: Write is atomic per path, MultiWrite is
// atomic across its listed paths only (a nil document deletes the path), Read
// returns a point-in-time snapshot, and QueryEqual returns every direct child
// of the collection whose named field equals the given value. Nothing stronger:
// no cross-path transactions and no referential integrity.
type Store interface {
	Read(ctx context.Context, path string) (Snapshot, error)
	Write(ctx context.Context, path string, doc interface{}) error
	MultiWrite(ctx context.Context, updates map[string]interface{}) error
	QueryEqual(ctx context.Context, collection, field string, value interface{}) ([]Snapshot, error)
	PushID(ctx context.Context, collection string) (string, error)
	Close() error
}

// Join builds a slash-separated path from its segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Setup opens the store backend selected by the configuration.
func Setup(cfg config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "postgres":
		return SetupLocal(cfg)
	case "remote":
		return DialRemote(cfg.StoreURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// fieldEquals reports whether doc[field] equals value after JSON
// normalization, so that e.g. int and float64 forms of a number compare equal.
func fieldEquals(doc json.RawMessage, field string, value interface{}) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false
	}
	got, ok := fields[field]
	if !ok {
		return false
	}
	want, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return string(got) == string(want)
}
