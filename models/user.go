package models

// User is an account record. Username and email are stored normalized
// (trimmed, lowercased) and each also lives in a secondary index subtree
// mapping the normalized value back to the account id.
type User struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	PasswordHash       string `json:"passwordHash"`
	SecurityQuestion   string `json:"securityQuestion,omitempty"`
	SecurityAnswerHash string `json:"securityAnswerHash,omitempty"`
	CreatedAt          int64  `json:"createdAt"`
	LastLogin          int64  `json:"lastLogin,omitempty"`
}
