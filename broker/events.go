package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	NoteCreated EventType = "note.created"
	NoteUpdated EventType = "note.updated"
	NoteDeleted EventType = "note.deleted"

	NoteShared            EventType = "note.shared"
	NoteUnshared          EventType = "note.unshared"
	SharePermissionUpdate EventType = "note.permission_changed"

	UserCreated EventType = "user.created"

	CategoryCreated EventType = "category.created"
	CategoryDeleted EventType = "category.deleted"
)

// Subjects the producer publishes on.
const (
	UserEventsSubject  = "syncnote.user_events"
	NoteEventsSubject  = "syncnote.note_events"
	ShareEventsSubject = "syncnote.share_events"
)
