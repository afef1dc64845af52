package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTreeServer speaks the websocket rpc protocol against an in-memory map.
type fakeTreeServer struct {
	srv *httptest.Server

	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func newFakeTreeServer(t *testing.T) *fakeTreeServer {
	f := &fakeTreeServer{docs: make(map[string]json.RawMessage)}
	upgrader := websocket.Upgrader{}

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := conn.WriteJSON(f.handle(req)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTreeServer) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeTreeServer) handle(req rpcRequest) rpcResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	resp := rpcResponse{ID: req.ID}
	switch req.Method {
	case "read":
		if doc, ok := f.docs[req.Path]; ok {
			resp.Result = doc
			return resp
		}
		resp.Children = f.childrenLocked(req.Path)
	case "write":
		data, err := json.Marshal(req.Doc)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		f.docs[req.Path] = data
	case "multi_write":
		for path, doc := range req.Updates {
			if string(doc) == "null" {
				delete(f.docs, path)
			} else {
				f.docs[path] = doc
			}
		}
	case "query_equal":
		for _, child := range f.childrenLocked(req.Collection) {
			if fieldEquals(child.Doc, req.Field, req.Value) {
				resp.Children = append(resp.Children, child)
			}
		}
	case "push_id":
		resp.Result, _ = json.Marshal(uuid.NewString())
	default:
		resp.Error = "unknown method " + req.Method
	}
	return resp
}

func (f *fakeTreeServer) childrenLocked(collection string) []rpcChild {
	prefix := collection + "/"
	var children []rpcChild
	for path, doc := range f.docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		children = append(children, rpcChild{Key: rest, Doc: doc})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Key < children[j].Key })
	return children
}

func dialFake(t *testing.T) (*RemoteStore, *fakeTreeServer) {
	f := newFakeTreeServer(t)
	st, err := DialRemote(f.url())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, f
}

func TestRemoteStore_WriteRead(t *testing.T) {
	st, _ := dialFake(t)
	ctx := context.Background()

	require.NoError(t, st.Write(ctx, "notes/n1", map[string]interface{}{"title": "hello"}))

	snap, err := st.Read(ctx, "notes/n1")
	require.NoError(t, err)
	assert.True(t, snap.Exists())
	assert.Equal(t, "n1", snap.Key)

	var doc map[string]interface{}
	require.NoError(t, snap.Decode(&doc))
	assert.Equal(t, "hello", doc["title"])
}

func TestRemoteStore_ReadCollection(t *testing.T) {
	st, _ := dialFake(t)
	ctx := context.Background()

	require.NoError(t, st.Write(ctx, "notes/a", map[string]interface{}{"title": "A"}))
	require.NoError(t, st.Write(ctx, "notes/b", map[string]interface{}{"title": "B"}))

	snap, err := st.Read(ctx, "notes")
	require.NoError(t, err)
	require.Len(t, snap.Children, 2)
	assert.Equal(t, "a", snap.Children[0].Key)
	assert.Equal(t, "b", snap.Children[1].Key)
}

func TestRemoteStore_MultiWrite(t *testing.T) {
	st, _ := dialFake(t)
	ctx := context.Background()

	require.NoError(t, st.Write(ctx, "notes/n1", map[string]interface{}{"title": "old"}))
	require.NoError(t, st.MultiWrite(ctx, map[string]interface{}{
		"notes/n1": nil,
		"notes/n2": map[string]interface{}{"title": "new"},
	}))

	snap, err := st.Read(ctx, "notes/n1")
	require.NoError(t, err)
	assert.False(t, snap.Exists())

	snap, err = st.Read(ctx, "notes/n2")
	require.NoError(t, err)
	assert.True(t, snap.Exists())
}

func TestRemoteStore_QueryEqual(t *testing.T) {
	st, _ := dialFake(t)
	ctx := context.Background()

	require.NoError(t, st.Write(ctx, "notes/n1", map[string]interface{}{"userId": "u1"}))
	require.NoError(t, st.Write(ctx, "notes/n2", map[string]interface{}{"userId": "u2"}))

	snaps, err := st.QueryEqual(ctx, "notes", "userId", "u1")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "n1", snaps[0].Key)
}

func TestRemoteStore_PushID(t *testing.T) {
	st, _ := dialFake(t)

	a, err := st.PushID(context.Background(), "notes")
	require.NoError(t, err)
	b, err := st.PushID(context.Background(), "notes")
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestRemoteStore_ContextCancelled(t *testing.T) {
	// A server that accepts the connection but never answers.
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	st, err := DialRemote("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = st.Read(ctx, "notes/n1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRemoteStore_ServerGone(t *testing.T) {
	f := newFakeTreeServer(t)
	st, err := DialRemote(f.url())
	require.NoError(t, err)
	defer st.Close()

	f.srv.CloseClientConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = st.Read(ctx, "notes/n1")
	assert.Error(t, err)
}
