package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// request/response frames exchanged with the remote tree-store server. Every
// request carries a client-assigned id; the server echoes it back so responses
// can arrive in any order.
type rpcRequest struct {
	ID         string                     `json:"id"`
	Method     string                     `json:"method"`
	Path       string                     `json:"path,omitempty"`
	Doc        interface{}                `json:"doc,omitempty"`
	Updates    map[string]json.RawMessage `json:"updates,omitempty"`
	Collection string                     `json:"collection,omitempty"`
	Field      string                     `json:"field,omitempty"`
	Value      interface{}                `json:"value,omitempty"`
}

type rpcChild struct {
	Key string          `json:"key"`
	Doc json.RawMessage `json:"doc"`
}

type rpcResponse struct {
	ID       string          `json:"id"`
	Result   json.RawMessage `json:"result,omitempty"`
	Children []rpcChild      `json:"children,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// RemoteStore talks to a tree-store server over a single websocket. Requests
// are multiplexed: a response channel is registered per request id before the
// frame is written, and the read loop routes incoming frames to their waiters.
type RemoteStore struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan rpcResponse

	nextID uint64
	done   chan struct{}
}

func DialRemote(url string) (*RemoteStore, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial tree store at %s: %w", url, err)
	}

	r := &RemoteStore{
		conn:    conn,
		pending: make(map[string]chan rpcResponse),
		done:    make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

func (r *RemoteStore) readLoop() {
	defer close(r.done)
	for {
		var resp rpcResponse
		if err := r.conn.ReadJSON(&resp); err != nil {
			log.Debug().Err(err).Msg("tree store connection closed")
			return
		}

		r.pendingMu.Lock()
		ch, ok := r.pending[resp.ID]
		if ok {
			delete(r.pending, resp.ID)
		}
		r.pendingMu.Unlock()

		if !ok {
			log.Warn().Str("id", resp.ID).Msg("dropping response with no waiter")
			continue
		}
		ch <- resp
	}
}

func (r *RemoteStore) send(ctx context.Context, req rpcRequest) (rpcResponse, error) {
	req.ID = strconv.FormatUint(atomic.AddUint64(&r.nextID, 1), 10)

	ch := make(chan rpcResponse, 1)
	r.pendingMu.Lock()
	r.pending[req.ID] = ch
	r.pendingMu.Unlock()

	r.writeMu.Lock()
	err := r.conn.WriteJSON(req)
	r.writeMu.Unlock()
	if err != nil {
		r.pendingMu.Lock()
		delete(r.pending, req.ID)
		r.pendingMu.Unlock()
		return rpcResponse{}, fmt.Errorf("tree store write failed: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return rpcResponse{}, fmt.Errorf("tree store: %s", resp.Error)
		}
		return resp, nil
	case <-r.done:
		return rpcResponse{}, ErrNotConnected
	case <-ctx.Done():
		r.pendingMu.Lock()
		delete(r.pending, req.ID)
		r.pendingMu.Unlock()
		return rpcResponse{}, ctx.Err()
	}
}

func (r *RemoteStore) Read(ctx context.Context, path string) (Snapshot, error) {
	resp, err := r.send(ctx, rpcRequest{Method: "read", Path: path})
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Key: lastSegment(path), Data: resp.Result}
	for _, child := range resp.Children {
		snap.Children = append(snap.Children, Snapshot{Key: child.Key, Data: child.Doc})
	}
	return snap, nil
}

func (r *RemoteStore) Write(ctx context.Context, path string, doc interface{}) error {
	_, err := r.send(ctx, rpcRequest{Method: "write", Path: path, Doc: doc})
	return err
}

func (r *RemoteStore) MultiWrite(ctx context.Context, updates map[string]interface{}) error {
	encoded := make(map[string]json.RawMessage, len(updates))
	for path, doc := range updates {
		if doc == nil {
			encoded[path] = json.RawMessage("null")
			continue
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		encoded[path] = data
	}

	_, err := r.send(ctx, rpcRequest{Method: "multi_write", Updates: encoded})
	return err
}

func (r *RemoteStore) QueryEqual(ctx context.Context, collection, field string, value interface{}) ([]Snapshot, error) {
	resp, err := r.send(ctx, rpcRequest{
		Method:     "query_equal",
		Collection: collection,
		Field:      field,
		Value:      value,
	})
	if err != nil {
		return nil, err
	}

	snaps := make([]Snapshot, 0, len(resp.Children))
	for _, child := range resp.Children {
		snaps = append(snaps, Snapshot{Key: child.Key, Data: child.Doc})
	}
	return snaps, nil
}

func (r *RemoteStore) PushID(ctx context.Context, collection string) (string, error) {
	resp, err := r.send(ctx, rpcRequest{Method: "push_id", Collection: collection})
	if err != nil {
		return "", err
	}

	var id string
	if err := json.Unmarshal(resp.Result, &id); err != nil {
		return "", fmt.Errorf("tree store returned malformed id: %w", err)
	}
	return id, nil
}

func (r *RemoteStore) Close() error {
	return r.conn.Close()
}
