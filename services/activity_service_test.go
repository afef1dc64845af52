package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncnote/syncnote/models"
	"syncnote/syncnote/store"
	"syncnote/syncnote/testutils"
)

func TestActivityAppendAndList(t *testing.T) {
	st := store.NewMemoryStore()
	activity := NewActivityService()
	ctx := context.Background()

	activity.Append(ctx, st, "n1", "u1", "alice", models.ActionCreated, "")
	activity.Append(ctx, st, "n1", "u2", "bob", models.ActionShared, "shared with bob")
	activity.Append(ctx, st, "n2", "u1", "alice", models.ActionEdited, "")

	logs, err := activity.ListForNote(ctx, st, "n1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, "n1", entry.NoteID)
		assert.NotEmpty(t, entry.ID)
		assert.NotZero(t, entry.Timestamp)
	}
}

func TestActivityList_NewestFirst(t *testing.T) {
	st := store.NewMemoryStore()
	activity := NewActivityService()
	ctx := context.Background()

	require.NoError(t, st.Write(ctx, "activity_logs/a1", models.ActivityLog{
		NoteID: "n1", Action: models.ActionCreated, Timestamp: 100,
	}))
	require.NoError(t, st.Write(ctx, "activity_logs/a2", models.ActivityLog{
		NoteID: "n1", Action: models.ActionEdited, Timestamp: 300,
	}))
	require.NoError(t, st.Write(ctx, "activity_logs/a3", models.ActivityLog{
		NoteID: "n1", Action: models.ActionPinned, Timestamp: 200,
	}))

	logs, err := activity.ListForNote(ctx, st, "n1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.ActionEdited, logs[0].Action)
	assert.Equal(t, models.ActionPinned, logs[1].Action)
	assert.Equal(t, models.ActionCreated, logs[2].Action)
}

func TestActivityAppend_SwallowsFailures(t *testing.T) {
	st := store.NewMemoryStore()
	activity := NewActivityService()
	ctx := context.Background()

	faulty := &testutils.FaultStore{Store: st, FailAllWrites: true}

	// Append has no error return; a failing store must not panic and must
	// leave the log untouched.
	assert.NotPanics(t, func() {
		activity.Append(ctx, faulty, "n1", "u1", "alice", models.ActionCreated, "")
	})

	logs, err := activity.ListForNote(ctx, st, "n1")
	require.NoError(t, err)
	assert.Empty(t, logs)
}
