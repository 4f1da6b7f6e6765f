package domain

import "time"

// ConnectivityEventKind identifies a connectivity transition.
type ConnectivityEventKind string

// Connectivity transitions.
const (
	BecameOnline  ConnectivityEventKind = "became-online"
	BecameOffline ConnectivityEventKind = "became-offline"
)

// ConnectivityEvent is emitted on every online/offline transition.
type ConnectivityEvent struct {
	Kind ConnectivityEventKind
	At   time.Time
}

// NoticeKind identifies a user-facing connectivity notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeOffline NoticeKind = "offline"
	NoticeOnline  NoticeKind = "online"
)

// IsValid returns true if the notice kind is recognised.
func (k NoticeKind) IsValid() bool {
	return k == NoticeOffline || k == NoticeOnline
}

// Notice is a connectivity toast shown to the cashier.
type Notice struct {
	Kind     NoticeKind `json:"kind"`
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	RaisedAt time.Time  `json:"raised_at"`

	// ExpiresAt is zero for notices that stay until dismissed.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Persistent returns true if the notice only goes away when dismissed.
func (n Notice) Persistent() bool {
	return n.ExpiresAt.IsZero()
}
