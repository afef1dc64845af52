package models

// ShareLink is a shareable-link token record. The code is the storage key;
// it is generated client-side and unique with high probability only.
type ShareLink struct {
	Code       string     `json:"-"`
	NoteID     string     `json:"noteId"`
	Permission Permission `json:"permission"`
	CreatedAt  int64      `json:"createdAt"`
	Active     bool       `json:"active"`
}
