package testutils

import (
	"context"
	"errors"

	"syncnote/syncnote/store"
)

// ErrInjected is returned by FaultStore for paths registered as failing.
var ErrInjected = errors.New("injected store failure")

// FaultStore wraps a Store and fails reads of selected paths, for exercising
// partial-failure behavior in fan-out code. FailAllWrites additionally fails
// every Write.
type FaultStore struct {
	store.Store
	FailReads     map[string]bool
	FailAllWrites bool
}

func NewFaultStore(inner store.Store, failReads ...string) *FaultStore {
	fails := make(map[string]bool, len(failReads))
	for _, path := range failReads {
		fails[path] = true
	}
	return &FaultStore{Store: inner, FailReads: fails}
}

func (f *FaultStore) Read(ctx context.Context, path string) (store.Snapshot, error) {
	if f.FailReads[path] {
		return store.Snapshot{}, ErrInjected
	}
	return f.Store.Read(ctx, path)
}

func (f *FaultStore) Write(ctx context.Context, path string, doc interface{}) error {
	if f.FailAllWrites {
		return ErrInjected
	}
	return f.Store.Write(ctx, path, doc)
}
