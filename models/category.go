package models

import "time"

// Category is a per-owner note category. Name uniqueness is scoped to the
// owner and enforced by the category service (read-all-then-check), not by
// the store.
type Category struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	NoteCount int    `json:"noteCount"`
	CreatedAt int64  `json:"createdAt"`
}

func NewCategory(userID, name, color string) *Category {
	return &Category{
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UnixMilli(),
	}
}
