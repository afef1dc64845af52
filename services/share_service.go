package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"syncnote/syncnote/broker"
	"syncnote/syncnote/models"
	"syncnote/syncnote/store"
)

type ShareServiceInterface interface {
	ShareNote(ctx context.Context, st store.Store, noteID, ownerID, sharedWithUserID string, permission models.Permission) error
	UnshareNote(ctx context.Context, st store.Store, noteID, sharedWithUserID string) error
	UpdateSharePermission(ctx context.Context, st store.Store, noteID, sharedWithUserID string, permission models.Permission) error
	GetSharesForNote(ctx context.Context, st store.Store, noteID string) ([]models.SharedNote, error)
	GetSharesForRecipient(ctx context.Context, st store.Store, userID string) ([]models.SharedNote, error)
	GetSharePermission(ctx context.Context, st store.Store, noteID, userID string) (models.SharedNote, error)
	GenerateShareLink(ctx context.Context, st store.Store, noteID string, permission models.Permission) (string, error)
	ResolveShareLink(ctx context.Context, st store.Store, code string) (models.Note, error)
	DeactivateShareLink(ctx context.Context, st store.Store, code string) error
}

type ShareService struct {
	notes  NoteServiceInterface
	events *broker.Producer
}

func NewShareService(notes NoteServiceInterface, events *broker.Producer) *ShareService {
	return &ShareService{notes: notes, events: events}
}

// ShareNote creates a share edge, or overwrites the existing edge in place
// when the note is already shared with that recipient. This keeps at most one
// edge per (note, recipient) pair and makes sharing idempotent.
func (s *ShareService) ShareNote(ctx context.Context, st store.Store, noteID, ownerID, sharedWithUserID string, permission models.Permission) error {
	if !permission.Valid() {
		return ErrInvalidPermission
	}

	edges, err := st.QueryEqual(ctx, sharedNotesRef, "noteId", noteID)
	if err != nil {
		return err
	}

	shareID := ""
	for _, snap := range edges {
		var existing models.SharedNote
		if snap.Decode(&existing) == nil && existing.SharedWithUserID == sharedWithUserID {
			shareID = snap.Key
			break
		}
	}

	if shareID == "" {
		shareID, err = st.PushID(ctx, sharedNotesRef)
		if err != nil {
			return err
		}
	}

	edge := models.SharedNote{
		ID:               shareID,
		NoteID:           noteID,
		OwnerID:          ownerID,
		SharedWithUserID: sharedWithUserID,
		Permission:       permission,
		SharedAt:         time.Now().UnixMilli(),
	}

	if err := st.Write(ctx, store.Join(sharedNotesRef, shareID), edge); err != nil {
		return err
	}

	publishEvent(s.events, broker.ShareEventsSubject, string(broker.NoteShared), "share", ownerID, map[string]interface{}{
		"note_id":     noteID,
		"shared_with": sharedWithUserID,
		"permission":  string(permission),
	})
	return nil
}

// UnshareNote removes the single edge for the (note, recipient) pair.
func (s *ShareService) UnshareNote(ctx context.Context, st store.Store, noteID, sharedWithUserID string) error {
	snap, err := s.findEdge(ctx, st, noteID, sharedWithUserID)
	if err != nil {
		return err
	}

	if err := st.MultiWrite(ctx, map[string]interface{}{
		store.Join(sharedNotesRef, snap.Key): nil,
	}); err != nil {
		return err
	}

	publishEvent(s.events, broker.ShareEventsSubject, string(broker.NoteUnshared), "share", "", map[string]interface{}{
		"note_id":     noteID,
		"shared_with": sharedWithUserID,
	})
	return nil
}

// UpdateSharePermission patches only the permission field of the existing
// edge. Scan-then-patch without a concurrency token: concurrent updates to
// the same edge can lose one of the writes.
func (s *ShareService) UpdateSharePermission(ctx context.Context, st store.Store, noteID, sharedWithUserID string, permission models.Permission) error {
	if !permission.Valid() {
		return ErrInvalidPermission
	}

	snap, err := s.findEdge(ctx, st, noteID, sharedWithUserID)
	if err != nil {
		return err
	}

	var edge models.SharedNote
	if err := snap.Decode(&edge); err != nil {
		return err
	}
	edge.ID = snap.Key
	edge.Permission = permission

	if err := st.Write(ctx, store.Join(sharedNotesRef, snap.Key), edge); err != nil {
		return err
	}

	publishEvent(s.events, broker.ShareEventsSubject, string(broker.SharePermissionUpdate), "share", "", map[string]interface{}{
		"note_id":     noteID,
		"shared_with": sharedWithUserID,
		"permission":  string(permission),
	})
	return nil
}

func (s *ShareService) GetSharesForNote(ctx context.Context, st store.Store, noteID string) ([]models.SharedNote, error) {
	snaps, err := st.QueryEqual(ctx, sharedNotesRef, "noteId", noteID)
	if err != nil {
		return nil, err
	}
	return decodeEdges(snaps), nil
}

func (s *ShareService) GetSharesForRecipient(ctx context.Context, st store.Store, userID string) ([]models.SharedNote, error) {
	snaps, err := st.QueryEqual(ctx, sharedNotesRef, "sharedWithUserId", userID)
	if err != nil {
		return nil, err
	}
	return decodeEdges(snaps), nil
}

// GetSharePermission returns the edge granting userID access to noteID, or
// ErrShareNotFound when the note is not shared with that user.
func (s *ShareService) GetSharePermission(ctx context.Context, st store.Store, noteID, userID string) (models.SharedNote, error) {
	snap, err := s.findEdge(ctx, st, noteID, userID)
	if err != nil {
		return models.SharedNote{}, err
	}

	var edge models.SharedNote
	if err := snap.Decode(&edge); err != nil {
		return models.SharedNote{}, err
	}
	edge.ID = snap.Key
	return edge, nil
}

// GenerateShareLink creates a link token record and stamps the note with the
// code. The two writes are not atomic with each other: if the note stamp
// fails, the orphan token is unreachable and harmless.
func (s *ShareService) GenerateShareLink(ctx context.Context, st store.Store, noteID string, permission models.Permission) (string, error) {
	if !permission.Valid() {
		return "", ErrInvalidPermission
	}

	code := strings.ToUpper(uuid.NewString()[:8])

	link := models.ShareLink{
		NoteID:     noteID,
		Permission: permission,
		CreatedAt:  time.Now().UnixMilli(),
		Active:     true,
	}
	if err := st.Write(ctx, store.Join(shareLinksRef, code), link); err != nil {
		return "", err
	}

	note, err := s.notes.GetNoteByID(ctx, st, noteID)
	if err == nil {
		note.ShareLink = code
		err = st.Write(ctx, store.Join(notesRef, noteID), note)
	}
	if err != nil {
		log.Warn().Err(err).Str("note_id", noteID).Msg("failed to stamp note with share link")
	}

	return code, nil
}

// ResolveShareLink loads the note behind a link code. The token must exist
// and still be active.
func (s *ShareService) ResolveShareLink(ctx context.Context, st store.Store, code string) (models.Note, error) {
	snap, err := st.Read(ctx, store.Join(shareLinksRef, code))
	if err != nil {
		return models.Note{}, err
	}
	if !snap.Exists() {
		return models.Note{}, ErrInvalidShareLink
	}

	var link models.ShareLink
	if err := snap.Decode(&link); err != nil {
		return models.Note{}, ErrInvalidShareLink
	}
	if !link.Active {
		return models.Note{}, ErrShareLinkInactive
	}
	if link.NoteID == "" {
		return models.Note{}, ErrInvalidShareLink
	}

	return s.notes.GetNoteByID(ctx, st, link.NoteID)
}

func (s *ShareService) DeactivateShareLink(ctx context.Context, st store.Store, code string) error {
	snap, err := st.Read(ctx, store.Join(shareLinksRef, code))
	if err != nil {
		return err
	}
	if !snap.Exists() {
		return ErrInvalidShareLink
	}

	var link models.ShareLink
	if err := snap.Decode(&link); err != nil {
		return ErrInvalidShareLink
	}
	link.Active = false
	return st.Write(ctx, store.Join(shareLinksRef, code), link)
}

func (s *ShareService) findEdge(ctx context.Context, st store.Store, noteID, sharedWithUserID string) (store.Snapshot, error) {
	edges, err := st.QueryEqual(ctx, sharedNotesRef, "noteId", noteID)
	if err != nil {
		return store.Snapshot{}, err
	}

	for _, snap := range edges {
		var edge models.SharedNote
		if snap.Decode(&edge) == nil && edge.SharedWithUserID == sharedWithUserID {
			return snap, nil
		}
	}
	return store.Snapshot{}, ErrShareNotFound
}

func decodeEdges(snaps []store.Snapshot) []models.SharedNote {
	edges := make([]models.SharedNote, 0, len(snaps))
	for _, snap := range snaps {
		var edge models.SharedNote
		if err := snap.Decode(&edge); err != nil {
			continue
		}
		edge.ID = snap.Key
		edges = append(edges, edge)
	}
	return edges
}

var ShareServiceInstance ShareServiceInterface
