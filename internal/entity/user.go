package entity

import "time"

// MaxNameLength bounds display names; longer names are truncated on rename.
const MaxNameLength = 20

// User is an ephemeral per-connection participant. It exists only while its
// session is active; blocks it claimed keep their own copies of name and
// color after it disconnects.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	BlocksOwned int       `json:"blocksOwned"`
	JoinedAt    time.Time `json:"joinedAt"`

	// Seq orders users by registration, giving leaderboards and listings
	// a stable order for equal block counts.
	Seq int64 `json:"-"`
}
