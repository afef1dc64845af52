package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"syncnote/syncnote/broker"
	"syncnote/syncnote/models"
	"syncnote/syncnote/store"
)

type NoteServiceInterface interface {
	SaveNote(ctx context.Context, st store.Store, note *models.Note) (string, error)
	GetNoteByID(ctx context.Context, st store.Store, id string) (models.Note, error)
	UpdateNote(ctx context.Context, st store.Store, note *models.Note, editorID, editorName string) error
	DeleteNote(ctx context.Context, st store.Store, id string) error
	GetNotesForUser(ctx context.Context, st store.Store, userID string) ([]models.Note, error)
	SetNotePinned(ctx context.Context, st store.Store, noteID string, pinned bool) error
	SetNoteColor(ctx context.Context, st store.Store, noteID, color string) error
	SetNoteCategory(ctx context.Context, st store.Store, noteID, category string) error
}

type NoteService struct {
	events *broker.Producer
}

func NewNoteService(events *broker.Producer) *NoteService {
	return &NoteService{events: events}
}

// SaveNote writes the note document. A note without an id gets a fresh
// store-assigned key and a createdAt stamp; updatedAt is always stamped.
func (s *NoteService) SaveNote(ctx context.Context, st store.Store, note *models.Note) (string, error) {
	created := false
	if note.ID == "" {
		id, err := st.PushID(ctx, notesRef)
		if err != nil {
			return "", err
		}
		note.ID = id
		created = true
	}

	now := time.Now().UnixMilli()
	if note.CreatedAt == 0 {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	if err := st.Write(ctx, store.Join(notesRef, note.ID), note); err != nil {
		return "", err
	}

	if created {
		publishEvent(s.events, broker.NoteEventsSubject, string(broker.NoteCreated), "note", note.UserID, map[string]interface{}{
			"note_id": note.ID,
			"user_id": note.UserID,
			"title":   note.Title,
		})
	}
	return note.ID, nil
}

func (s *NoteService) GetNoteByID(ctx context.Context, st store.Store, id string) (models.Note, error) {
	snap, err := st.Read(ctx, store.Join(notesRef, id))
	if err != nil {
		return models.Note{}, err
	}
	if !snap.Exists() {
		return models.Note{}, ErrNoteNotFound
	}

	var note models.Note
	if err := snap.Decode(&note); err != nil {
		return models.Note{}, err
	}
	// The stored document may omit its own id; the path key is authoritative.
	note.ID = snap.Key
	return note, nil
}

// UpdateNote overwrites the full document. Callers supply the complete
// current note plus their changes; there is no partial-patch path.
func (s *NoteService) UpdateNote(ctx context.Context, st store.Store, note *models.Note, editorID, editorName string) error {
	if note.ID == "" {
		return ErrInvalidInput
	}

	note.UpdatedAt = time.Now().UnixMilli()
	note.LastUpdatedBy = editorID
	note.LastUpdatedByUsername = editorName

	if err := st.Write(ctx, store.Join(notesRef, note.ID), note); err != nil {
		return err
	}

	publishEvent(s.events, broker.NoteEventsSubject, string(broker.NoteUpdated), "note", editorID, map[string]interface{}{
		"note_id": note.ID,
		"user_id": note.UserID,
		"title":   note.Title,
	})
	return nil
}

// DeleteNote removes the note and every share edge referencing it in one
// atomic multi-path write.
func (s *NoteService) DeleteNote(ctx context.Context, st store.Store, id string) error {
	edges, err := st.QueryEqual(ctx, sharedNotesRef, "noteId", id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		store.Join(notesRef, id): nil,
	}
	for _, edge := range edges {
		updates[store.Join(sharedNotesRef, edge.Key)] = nil
	}

	if err := st.MultiWrite(ctx, updates); err != nil {
		return err
	}

	publishEvent(s.events, broker.NoteEventsSubject, string(broker.NoteDeleted), "note", "", map[string]interface{}{
		"note_id": id,
	})
	return nil
}

func (s *NoteService) GetNotesForUser(ctx context.Context, st store.Store, userID string) ([]models.Note, error) {
	snaps, err := st.QueryEqual(ctx, notesRef, "userId", userID)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(snaps))
	for _, snap := range snaps {
		var note models.Note
		if err := snap.Decode(&note); err != nil {
			continue
		}
		note.ID = snap.Key
		notes = append(notes, note)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt > notes[j].UpdatedAt
	})
	return notes, nil
}

func (s *NoteService) SetNotePinned(ctx context.Context, st store.Store, noteID string, pinned bool) error {
	return s.patchNote(ctx, st, noteID, func(note *models.Note) {
		note.IsPinned = pinned
	})
}

func (s *NoteService) SetNoteColor(ctx context.Context, st store.Store, noteID, color string) error {
	return s.patchNote(ctx, st, noteID, func(note *models.Note) {
		note.Color = color
	})
}

func (s *NoteService) SetNoteCategory(ctx context.Context, st store.Store, noteID, category string) error {
	return s.patchNote(ctx, st, noteID, func(note *models.Note) {
		note.Category = category
	})
}

// patchNote is a read-modify-write of a single field. No optimistic
// concurrency token; concurrent patches to the same note can lose updates.
func (s *NoteService) patchNote(ctx context.Context, st store.Store, noteID string, apply func(*models.Note)) error {
	note, err := s.GetNoteByID(ctx, st, noteID)
	if err != nil {
		return err
	}
	apply(&note)
	return st.Write(ctx, store.Join(notesRef, noteID), note)
}

// SortOption selects the comparator applied within the pinned and unpinned
// partitions.
type SortOption int

const (
	SortByUpdated SortOption = iota
	SortByCreated
	SortByTitleAsc
	SortByTitleDesc
)

// SortNotes partitions notes into pinned and unpinned, sorts each partition
// independently by the active comparator, and returns pinned first.
func SortNotes(notes []models.Note, opt SortOption) []models.Note {
	var pinned, unpinned []models.Note
	for _, note := range notes {
		if note.IsPinned {
			pinned = append(pinned, note)
		} else {
			unpinned = append(unpinned, note)
		}
	}

	less := noteComparator(opt)
	sort.SliceStable(pinned, func(i, j int) bool { return less(pinned[i], pinned[j]) })
	sort.SliceStable(unpinned, func(i, j int) bool { return less(unpinned[i], unpinned[j]) })

	sorted := make([]models.Note, 0, len(notes))
	sorted = append(sorted, pinned...)
	return append(sorted, unpinned...)
}

func noteComparator(opt SortOption) func(a, b models.Note) bool {
	switch opt {
	case SortByCreated:
		return func(a, b models.Note) bool { return a.CreatedAt > b.CreatedAt }
	case SortByTitleAsc:
		return func(a, b models.Note) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortByTitleDesc:
		return func(a, b models.Note) bool {
			return strings.ToLower(a.Title) > strings.ToLower(b.Title)
		}
	default:
		return func(a, b models.Note) bool { return a.UpdatedAt > b.UpdatedAt }
	}
}

var NoteServiceInstance NoteServiceInterface
