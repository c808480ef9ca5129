package broadcast

import (
	"encoding/json"
	"time"

	"github.com/blockclaim/blockclaim-backend/internal/entity"
)

// Event is one of a closed set of outbound event kinds. Every variant the
// delivery layer must know how to serialize lives in this file; transports
// only ever see the encoded Message.
type Event interface {
	Action() string
}

// Message is the wire envelope shared by every outbound event.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps an event into its wire envelope.
func Encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: event.Action(), Payload: payload})
}

// UserAssignedEvent carries the freshly registered user's own descriptor,
// sent only to that user's session.
type UserAssignedEvent struct {
	entity.User
}

func (UserAssignedEvent) Action() string { return "user-assigned" }

// BlockInfo is one claimed cell inside a grid snapshot.
type BlockInfo struct {
	Owner      string    `json:"owner"`
	OwnerName  string    `json:"ownerName"`
	OwnerColor string    `json:"ownerColor"`
	ClaimedAt  time.Time `json:"claimedAt"`
}

// SnapshotEvent is the full-grid state sent to a session when it becomes
// active, and served on demand over REST. Only claimed cells are included.
type SnapshotEvent struct {
	GridSize      int                  `json:"gridSize"`
	ClaimedBlocks map[string]BlockInfo `json:"claimedBlocks"`
}

func (SnapshotEvent) Action() string { return "blocks-initialized" }

// BlockClaimedEvent announces a successful claim to every active session,
// including the claimant.
type BlockClaimedEvent struct {
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Owner      string    `json:"owner"`
	OwnerName  string    `json:"ownerName"`
	OwnerColor string    `json:"ownerColor"`
	Timestamp  time.Time `json:"timestamp"`
}

func (BlockClaimedEvent) Action() string { return "block-claimed" }

// OwnerInfo describes the current owner of a contested block.
type OwnerInfo struct {
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	ClaimedAt time.Time `json:"claimedAt"`
}

// ClaimFailedEvent is unicast to a requester whose claim was rejected.
// Coordinates are echoed back as received, so a non-integer attempt like
// (3.5, 2) round-trips intact.
type ClaimFailedEvent struct {
	Error        string     `json:"error"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	CurrentOwner *OwnerInfo `json:"currentOwner,omitempty"`
}

func (ClaimFailedEvent) Action() string { return "claim-failed" }

// RenameFailedEvent is unicast to a requester whose rename was rejected.
type RenameFailedEvent struct {
	Error string `json:"error"`
}

func (RenameFailedEvent) Action() string { return "rename-failed" }

// UserJoinedEvent announces a new participant to every other session.
type UserJoinedEvent struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	ConnectedUsers int    `json:"connectedUsers"`
}

func (UserJoinedEvent) Action() string { return "user-joined" }

// UserLeftEvent announces a departure to every remaining session.
type UserLeftEvent struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ConnectedUsers int    `json:"connectedUsers"`
}

func (UserLeftEvent) Action() string { return "user-left" }

// UserRenamedEvent announces a display-name change to every active session.
type UserRenamedEvent struct {
	UserID  string `json:"userId"`
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
	Color   string `json:"color"`
}

func (UserRenamedEvent) Action() string { return "user-name-changed" }
