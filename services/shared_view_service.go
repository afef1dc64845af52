package services

import (
	"context"
	"sort"
	"sync"

	"syncnote/syncnote/models"
	"syncnote/syncnote/store"
)

// Fallback labels for enrichment lookups that fail. A failed branch still
// contributes its record; the aggregate never drops entries.
const (
	UnknownUserLabel = "Unknown User"
	UnknownNoteLabel = "Unknown Note"
)

type SharedViewServiceInterface interface {
	GetSharedNotesForUser(ctx context.Context, st store.Store, userID string) ([]models.SharedNote, error)
	GetSharedUsersForNote(ctx context.Context, st store.Store, noteID string) ([]models.SharedNote, error)
}

// SharedViewService materializes display-ready share views by fanning out
// note and account lookups for each edge and joining the results.
type SharedViewService struct {
	notes NoteServiceInterface
	users AuthServiceInterface
}

func NewSharedViewService(notes NoteServiceInterface, users AuthServiceInterface) *SharedViewService {
	return &SharedViewService{notes: notes, users: users}
}

// GetSharedNotesForUser returns the inbound shares of an account, each
// enriched with the note title/content and the owner's username. The result
// always has one entry per edge, sorted by sharedAt descending.
func (s *SharedViewService) GetSharedNotesForUser(ctx context.Context, st store.Store, userID string) ([]models.SharedNote, error) {
	snaps, err := st.QueryEqual(ctx, sharedNotesRef, "sharedWithUserId", userID)
	if err != nil {
		return nil, err
	}

	edges := decodeEdges(snaps)
	if len(edges) == 0 {
		return []models.SharedNote{}, nil
	}

	// One branch per edge, each writing its own slot; no shared counter and
	// no append under contention.
	results := make([]models.SharedNote, len(edges))
	var wg sync.WaitGroup
	for i, edge := range edges {
		wg.Add(1)
		go func(i int, edge models.SharedNote) {
			defer wg.Done()

			if note, err := s.notes.GetNoteByID(ctx, st, edge.NoteID); err == nil {
				edge.NoteTitle = note.Title
				edge.NoteContent = note.Content
			} else {
				edge.NoteTitle = UnknownNoteLabel
			}

			if owner, err := s.users.GetUserByID(ctx, st, edge.OwnerID); err == nil {
				edge.OwnerUsername = owner.Username
			} else {
				edge.OwnerUsername = UnknownUserLabel
			}

			results[i] = edge
		}(i, edge)
	}
	wg.Wait()

	sortBySharedAt(results)
	return results, nil
}

// GetSharedUsersForNote returns the outbound shares of a note, each enriched
// with the recipient's username. It scans the whole edge collection and
// filters by noteId in code rather than requiring a second index; that is a
// deliberate O(total edges) trade-off inherited from the store layout.
func (s *SharedViewService) GetSharedUsersForNote(ctx context.Context, st store.Store, noteID string) ([]models.SharedNote, error) {
	snap, err := st.Read(ctx, sharedNotesRef)
	if err != nil {
		return nil, err
	}

	var matching []models.SharedNote
	for _, edge := range decodeEdges(snap.Children) {
		if edge.NoteID == noteID {
			matching = append(matching, edge)
		}
	}
	if len(matching) == 0 {
		return []models.SharedNote{}, nil
	}

	results := make([]models.SharedNote, len(matching))
	var wg sync.WaitGroup
	for i, edge := range matching {
		wg.Add(1)
		go func(i int, edge models.SharedNote) {
			defer wg.Done()

			if edge.SharedWithUserID == "" {
				edge.SharedWithUsername = UnknownUserLabel
			} else if user, err := s.users.GetUserByID(ctx, st, edge.SharedWithUserID); err == nil {
				edge.SharedWithUsername = user.Username
			} else {
				edge.SharedWithUsername = UnknownUserLabel
			}

			results[i] = edge
		}(i, edge)
	}
	wg.Wait()

	sortBySharedAt(results)
	return results, nil
}

func sortBySharedAt(edges []models.SharedNote) {
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].SharedAt > edges[j].SharedAt
	})
}

var SharedViewServiceInstance SharedViewServiceInterface
