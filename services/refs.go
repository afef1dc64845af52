package services

import "strings"

// Top-level subtrees of the store.
const (
	usersRef        = "users"
	notesRef        = "notes"
	sharedNotesRef  = "shared_notes"
	usernamesRef    = "usernames"
	emailsRef       = "emails"
	categoriesRef   = "categories"
	activityLogsRef = "activity_logs"
	shareLinksRef   = "share_links"
)

// emailKey makes an email safe for use as a path segment: the store forbids
// "." in keys, so it is stored as ",".
func emailKey(email string) string {
	return strings.ReplaceAll(email, ".", ",")
}
