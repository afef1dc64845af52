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

type sharedViewFixture struct {
	st     store.Store
	auth   *AuthService
	notes  *NoteService
	shares *ShareService
	views  *SharedViewService

	aliceID string
	bobID   string
}

func newSharedViewFixture(t *testing.T) *sharedViewFixture {
	st := store.NewMemoryStore()
	auth := NewAuthService("test-secret", 1, nil)
	notes := NewNoteService(nil)
	ctx := context.Background()

	aliceID, err := auth.Register(ctx, st, "alice", "alice@b.com", "pw", "", "")
	require.NoError(t, err)
	bobID, err := auth.Register(ctx, st, "bob", "bob@b.com", "pw", "", "")
	require.NoError(t, err)

	return &sharedViewFixture{
		st:      st,
		auth:    auth,
		notes:   notes,
		shares:  NewShareService(notes, nil),
		views:   NewSharedViewService(notes, auth),
		aliceID: aliceID,
		bobID:   bobID,
	}
}

func TestGetSharedNotesForUser_Enriches(t *testing.T) {
	f := newSharedViewFixture(t)
	ctx := context.Background()

	noteID, err := f.notes.SaveNote(ctx, f.st, models.NewNote(f.aliceID, "Groceries", "milk"))
	require.NoError(t, err)
	require.NoError(t, f.shares.ShareNote(ctx, f.st, noteID, f.aliceID, f.bobID, models.PermissionView))

	got, err := f.views.GetSharedNotesForUser(ctx, f.st, f.bobID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Groceries", got[0].NoteTitle)
	assert.Equal(t, "milk", got[0].NoteContent)
	assert.Equal(t, "alice", got[0].OwnerUsername)
	assert.Equal(t, models.PermissionView, got[0].Permission)
}

func TestGetSharedNotesForUser_Empty(t *testing.T) {
	f := newSharedViewFixture(t)

	got, err := f.views.GetSharedNotesForUser(context.Background(), f.st, f.bobID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetSharedNotesForUser_FailedBranchKeepsEntry(t *testing.T) {
	f := newSharedViewFixture(t)
	ctx := context.Background()

	goodID, err := f.notes.SaveNote(ctx, f.st, models.NewNote(f.aliceID, "Good", ""))
	require.NoError(t, err)
	badID, err := f.notes.SaveNote(ctx, f.st, models.NewNote(f.aliceID, "Bad", ""))
	require.NoError(t, err)

	require.NoError(t, f.shares.ShareNote(ctx, f.st, goodID, f.aliceID, f.bobID, models.PermissionView))
	require.NoError(t, f.shares.ShareNote(ctx, f.st, badID, f.aliceID, f.bobID, models.PermissionView))

	// The bad note's read fails, but its entry still appears with fallback
	// labels; the aggregate never shrinks.
	faulty := testutils.NewFaultStore(f.st, "notes/"+badID)

	got, err := f.views.GetSharedNotesForUser(ctx, faulty, f.bobID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byNote := make(map[string]models.SharedNote, len(got))
	for _, edge := range got {
		byNote[edge.NoteID] = edge
	}
	assert.Equal(t, "Good", byNote[goodID].NoteTitle)
	assert.Equal(t, UnknownNoteLabel, byNote[badID].NoteTitle)
	assert.Equal(t, "alice", byNote[badID].OwnerUsername)
}

func TestGetSharedNotesForUser_SortedBySharedAtDesc(t *testing.T) {
	f := newSharedViewFixture(t)
	ctx := context.Background()

	// Edges written directly so the sharedAt stamps are controlled.
	require.NoError(t, f.st.Write(ctx, "shared_notes/s1", models.SharedNote{
		NoteID: "n1", OwnerID: f.aliceID, SharedWithUserID: f.bobID,
		Permission: models.PermissionView, SharedAt: 100,
	}))
	require.NoError(t, f.st.Write(ctx, "shared_notes/s2", models.SharedNote{
		NoteID: "n2", OwnerID: f.aliceID, SharedWithUserID: f.bobID,
		Permission: models.PermissionView, SharedAt: 300,
	}))
	require.NoError(t, f.st.Write(ctx, "shared_notes/s3", models.SharedNote{
		NoteID: "n3", OwnerID: f.aliceID, SharedWithUserID: f.bobID,
		Permission: models.PermissionView, SharedAt: 200,
	}))

	got, err := f.views.GetSharedNotesForUser(ctx, f.st, f.bobID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "n2", got[0].NoteID)
	assert.Equal(t, "n3", got[1].NoteID)
	assert.Equal(t, "n1", got[2].NoteID)
}

func TestGetSharedUsersForNote_FiltersByNote(t *testing.T) {
	f := newSharedViewFixture(t)
	ctx := context.Background()

	noteID, err := f.notes.SaveNote(ctx, f.st, models.NewNote(f.aliceID, "Mine", ""))
	require.NoError(t, err)
	otherID, err := f.notes.SaveNote(ctx, f.st, models.NewNote(f.aliceID, "Other", ""))
	require.NoError(t, err)

	require.NoError(t, f.shares.ShareNote(ctx, f.st, noteID, f.aliceID, f.bobID, models.PermissionEdit))
	require.NoError(t, f.shares.ShareNote(ctx, f.st, otherID, f.aliceID, f.bobID, models.PermissionView))

	got, err := f.views.GetSharedUsersForNote(ctx, f.st, noteID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].SharedWithUsername)
	assert.Equal(t, models.PermissionEdit, got[0].Permission)
}

func TestGetSharedUsersForNote_MissingRecipient(t *testing.T) {
	f := newSharedViewFixture(t)
	ctx := context.Background()

	require.NoError(t, f.st.Write(ctx, "shared_notes/s1", models.SharedNote{
		NoteID: "n1", OwnerID: f.aliceID, SharedWithUserID: "",
		Permission: models.PermissionView, SharedAt: 100,
	}))
	require.NoError(t, f.st.Write(ctx, "shared_notes/s2", models.SharedNote{
		NoteID: "n1", OwnerID: f.aliceID, SharedWithUserID: "ghost",
		Permission: models.PermissionView, SharedAt: 200,
	}))

	got, err := f.views.GetSharedUsersForNote(ctx, f.st, "n1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, UnknownUserLabel, got[0].SharedWithUsername)
	assert.Equal(t, UnknownUserLabel, got[1].SharedWithUsername)
}

func TestGetSharedUsersForNote_Empty(t *testing.T) {
	f := newSharedViewFixture(t)

	got, err := f.views.GetSharedUsersForNote(context.Background(), f.st, "none")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
