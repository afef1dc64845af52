package models

import (
	"time"

	"syncnote/syncnote/utils/timeutil"
)

// Activity log actions.
const (
	ActionCreated           = "created"
	ActionEdited            = "edited"
	ActionShared            = "shared"
	ActionUnshared          = "unshared"
	ActionPermissionChanged = "permission_changed"
	ActionPinned            = "pinned"
	ActionUnpinned          = "unpinned"
	ActionColorChanged      = "color_changed"
	ActionCategoryChanged   = "category_changed"
)

// ActivityLog is one append-only audit record keyed by note. Records are
// never mutated; they are removed only when their note is deleted.
type ActivityLog struct {
	ID        string `json:"id"`
	NoteID    string `json:"noteId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func NewActivityLog(noteID, userID, username, action, details string) *ActivityLog {
	return &ActivityLog{
		NoteID:    noteID,
		UserID:    userID,
		Username:  username,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UnixMilli(),
	}
}

// DisplayText renders the record as natural language. Details override the
// default text for actions whose description depends on context. Unknown
// actions render as their raw code.
func (a *ActivityLog) DisplayText() string {
	switch a.Action {
	case ActionCreated:
		return "created this note"
	case ActionEdited:
		return "edited this note"
	case ActionShared:
		if a.Details != "" {
			return a.Details
		}
		return "shared this note"
	case ActionUnshared:
		if a.Details != "" {
			return a.Details
		}
		return "removed access"
	case ActionPermissionChanged:
		if a.Details != "" {
			return a.Details
		}
		return "changed permissions"
	case ActionPinned:
		return "pinned this note"
	case ActionUnpinned:
		return "unpinned this note"
	case ActionColorChanged:
		return "changed note color"
	case ActionCategoryChanged:
		if a.Details != "" {
			return a.Details
		}
		return "changed category"
	default:
		return a.Action
	}
}

// DisplayTime renders the record's timestamp relative to now, e.g.
// "5 minutes ago".
func (a *ActivityLog) DisplayTime(now time.Time) string {
	return timeutil.RelativeTime(a.Timestamp, now)
}
