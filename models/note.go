package models

import "time"

// Note is a note document. The id is the storage key and may be absent from
// the stored document itself, so readers re-populate it from the key.
// Timestamps are epoch milliseconds as written by the store clients.
type Note struct {
	ID                    string   `json:"id"`
	UserID                string   `json:"userId"`
	Title                 string   `json:"title"`
	Content               string   `json:"content"`
	HTMLContent           string   `json:"htmlContent"`
	CreatedAt             int64    `json:"createdAt"`
	UpdatedAt             int64    `json:"updatedAt"`
	LastUpdatedBy         string   `json:"lastUpdatedBy,omitempty"`
	LastUpdatedByUsername string   `json:"lastUpdatedByUsername,omitempty"`
	IsPinned              bool     `json:"isPinned"`
	Color                 string   `json:"color"`
	Category              string   `json:"category"`
	ShareLink             string   `json:"shareLink,omitempty"`
	Tags                  []string `json:"tags,omitempty"`
}

const (
	DefaultNoteColor    = "#FFFFFF"
	DefaultNoteCategory = "Uncategorized"
)

func NewNote(userID, title, content string) *Note {
	now := time.Now().UnixMilli()
	return &Note{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		Color:     DefaultNoteColor,
		Category:  DefaultNoteCategory,
	}
}

func (n *Note) AddTag(tag string) {
	for _, t := range n.Tags {
		if t == tag {
			return
		}
	}
	n.Tags = append(n.Tags, tag)
}

func (n *Note) RemoveTag(tag string) {
	for i, t := range n.Tags {
		if t == tag {
			n.Tags = append(n.Tags[:i], n.Tags[i+1:]...)
			return
		}
	}
}
