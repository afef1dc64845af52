package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"syncnote/syncnote/models"
	"syncnote/syncnote/store"
)

type ActivityServiceInterface interface {
	Append(ctx context.Context, st store.Store, noteID, userID, username, action, details string)
	ListForNote(ctx context.Context, st store.Store, noteID string) ([]models.ActivityLog, error)
}

type ActivityService struct{}

func NewActivityService() *ActivityService {
	return &ActivityService{}
}

// Append records one audit entry. Logging is best-effort: failures are
// logged and swallowed so they can never fail or block the operation being
// annotated.
func (s *ActivityService) Append(ctx context.Context, st store.Store, noteID, userID, username, action, details string) {
	logID, err := st.PushID(ctx, activityLogsRef)
	if err != nil {
		log.Warn().Err(err).Str("note_id", noteID).Msg("failed to allocate activity log id")
		return
	}

	entry := models.NewActivityLog(noteID, userID, username, action, details)
	entry.ID = logID

	if err := st.Write(ctx, store.Join(activityLogsRef, logID), entry); err != nil {
		log.Warn().Err(err).Str("note_id", noteID).Str("action", action).Msg("failed to append activity log")
	}
}

func (s *ActivityService) ListForNote(ctx context.Context, st store.Store, noteID string) ([]models.ActivityLog, error) {
	snaps, err := st.QueryEqual(ctx, activityLogsRef, "noteId", noteID)
	if err != nil {
		return nil, err
	}

	logs := make([]models.ActivityLog, 0, len(snaps))
	for _, snap := range snaps {
		var entry models.ActivityLog
		if err := snap.Decode(&entry); err != nil {
			continue
		}
		entry.ID = snap.Key
		logs = append(logs, entry)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp > logs[j].Timestamp
	})
	return logs, nil
}

var ActivityServiceInstance ActivityServiceInterface
