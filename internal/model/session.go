package model

import "time"

// Session binds a user to its currently valid token pair. Rotation overwrites
// both token fields on the same row; a user may hold several rows at once
// (one per device).
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	UserAgent    string    `json:"userAgent,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SessionMetadata carries the client context captured at login.
type SessionMetadata struct {
	UserAgent string
	IPAddress string
}
