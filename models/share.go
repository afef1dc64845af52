package models

// Permission is a share permission level. Edit implies view; no other levels
// exist.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

func (p Permission) CanView() bool {
	return p == PermissionView || p == PermissionEdit
}

func (p Permission) CanEdit() bool {
	return p == PermissionEdit
}

// SharedNote is a share edge linking one note to one recipient. At most one
// active edge exists per (note, recipient) pair; sharing again overwrites the
// existing edge in place.
type SharedNote struct {
	ID               string     `json:"id"`
	NoteID           string     `json:"noteId"`
	OwnerID          string     `json:"ownerId"`
	SharedWithUserID string     `json:"sharedWithUserId"`
	Permission       Permission `json:"permission"`
	SharedAt         int64      `json:"sharedAt"`

	// Display-only enrichment, populated by the aggregation fan-out and never
	// written back to the store.
	NoteTitle          string `json:"-"`
	NoteContent        string `json:"-"`
	OwnerUsername      string `json:"-"`
	SharedWithUsername string `json:"-"`
}
