package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/blockclaim/blockclaim-backend/internal/apperror"
	"github.com/blockclaim/blockclaim-backend/internal/broadcast"
	"github.com/blockclaim/blockclaim-backend/internal/entity"
	"github.com/blockclaim/blockclaim-backend/internal/grid"
	"github.com/blockclaim/blockclaim-backend/internal/registry"
	"github.com/blockclaim/blockclaim-backend/internal/stats"
)

type blockRepository interface {
	Save(ctx context.Context, block *entity.Block) error
	UpdateOwnerName(ctx context.Context, ownerID, newName string) error
}

// GridManager is the session gateway: it binds connections to registered
// users, arbitrates claim and rename requests against the grid store, and
// emits the resulting events through the broadcast hub.
type GridManager struct {
	logger   *slog.Logger
	store    *grid.Store
	registry *registry.Registry
	hub      *broadcast.Hub
	repo     blockRepository // nil when persistence is disabled
}

func NewGridManager(logger *slog.Logger, store *grid.Store, reg *registry.Registry, hub *broadcast.Hub, repo blockRepository) *GridManager {
	return &GridManager{
		logger:   logger.With("component", "grid-manager"),
		store:    store,
		registry: reg,
		hub:      hub,
		repo:     repo,
	}
}

// Connect transitions a session into Active: registers a user for it, sends
// that session its own descriptor plus the full grid snapshot, and announces
// the join to everyone else.
func (that *GridManager) Connect(session broadcast.Session) entity.User {
	log := that.logger.With("method", "Connect")

	user := that.registry.Register(session.ID())
	that.hub.Register(session)

	if err := that.hub.SendTo(session.ID(), broadcast.UserAssignedEvent{User: user}); err != nil {
		log.Error("failed to send user descriptor", "userID", user.ID, "error", err)
		return user
	}

	if err := that.hub.SendTo(session.ID(), that.Snapshot()); err != nil {
		log.Error("failed to send grid snapshot", "userID", user.ID, "error", err)
		return user
	}

	that.hub.BroadcastExcept(broadcast.UserJoinedEvent{
		ID:             user.ID,
		Name:           user.Name,
		Color:          user.Color,
		ConnectedUsers: that.registry.Count(),
	}, session.ID())

	log.Info("user connected", "userID", user.ID, "name", user.Name)

	return user
}

// Disconnect transitions a session into Closed: unregisters its user and
// announces the departure. Idempotent; a second call for the same session
// is a no-op, and the user's claim records are left untouched.
func (that *GridManager) Disconnect(sessionID string) {
	log := that.logger.With("method", "Disconnect")

	that.hub.Unregister(sessionID)

	user, ok := that.registry.Unregister(sessionID)
	if !ok {
		return
	}

	that.hub.Broadcast(broadcast.UserLeftEvent{
		ID:             user.ID,
		Name:           user.Name,
		ConnectedUsers: that.registry.Count(),
	})

	log.Info("user disconnected", "userID", user.ID, "name", user.Name)
}

// Claim validates the requested coordinates and attempts the claim. A win is
// broadcast to every active session including the requester; any rejection
// goes back to the requester alone.
func (that *GridManager) Claim(ctx context.Context, sessionID string, x, y float64) error {
	log := that.logger.With("method", "Claim")

	user, ok := that.registry.GetByConn(sessionID)
	if !ok {
		return apperror.ErrIdentityNotFound
	}

	if !validCoordinate(x, y, that.store.Size()) {
		return that.hub.SendTo(sessionID, broadcast.ClaimFailedEvent{
			Error: "Invalid coordinates", X: x, Y: y,
		})
	}

	coord := entity.Coord{X: int(x), Y: int(y)}

	block, err := that.store.TryClaim(coord, user.ID, user.Name, user.Color)

	switch {
	case errors.Is(err, apperror.ErrInvalidCoordinate):
		// unreachable through this gateway, but the store re-validates
		return that.hub.SendTo(sessionID, broadcast.ClaimFailedEvent{
			Error: "Invalid coordinates", X: x, Y: y,
		})
	case errors.Is(err, apperror.ErrBlockAlreadyClaimed):
		return that.hub.SendTo(sessionID, broadcast.ClaimFailedEvent{
			Error: "Block already claimed",
			X:     x,
			Y:     y,
			CurrentOwner: &broadcast.OwnerInfo{
				Name:      block.OwnerName,
				Color:     block.OwnerColor,
				ClaimedAt: block.ClaimedAt,
			},
		})
	case err != nil:
		return err
	}

	that.registry.IncrementBlocks(user.ID)
	that.persistBlock(ctx, block)

	that.hub.Broadcast(broadcast.BlockClaimedEvent{
		X:          block.X,
		Y:          block.Y,
		Owner:      block.Owner,
		OwnerName:  block.OwnerName,
		OwnerColor: block.OwnerColor,
		Timestamp:  block.ClaimedAt,
	})

	log.Info("block claimed", "coord", coord.Key(), "userID", user.ID)

	return nil
}

// Rename applies a display-name change to the live user, back-fills the name
// onto every claim record the user owns, and broadcasts the change.
func (that *GridManager) Rename(ctx context.Context, sessionID, newName string) error {
	log := that.logger.With("method", "Rename")

	user, ok := that.registry.GetByConn(sessionID)
	if !ok {
		return apperror.ErrIdentityNotFound
	}

	oldName := user.Name

	updated, err := that.registry.Rename(user.ID, newName)
	if errors.Is(err, apperror.ErrEmptyName) {
		return that.hub.SendTo(sessionID, broadcast.RenameFailedEvent{Error: "Name cannot be empty"})
	}

	if err != nil {
		return err
	}

	that.store.RenameOwner(updated.ID, updated.Name)

	if that.repo != nil {
		if err = that.repo.UpdateOwnerName(ctx, updated.ID, updated.Name); err != nil {
			log.Error("failed to persist rename", "userID", updated.ID, "error", err)
		}
	}

	that.hub.Broadcast(broadcast.UserRenamedEvent{
		UserID:  updated.ID,
		OldName: oldName,
		NewName: updated.Name,
		Color:   updated.Color,
	})

	log.Info("user renamed", "userID", updated.ID, "oldName", oldName, "newName", updated.Name)

	return nil
}

// Snapshot builds the grid-snapshot payload from a consistent read of the
// claim set.
func (that *GridManager) Snapshot() broadcast.SnapshotEvent {
	blocks := that.store.Snapshot()

	claimed := make(map[string]broadcast.BlockInfo, len(blocks))
	for coord, block := range blocks {
		claimed[coord.Key()] = broadcast.BlockInfo{
			Owner:      block.Owner,
			OwnerName:  block.OwnerName,
			OwnerColor: block.OwnerColor,
			ClaimedAt:  block.ClaimedAt,
		}
	}

	return broadcast.SnapshotEvent{
		GridSize:      that.store.Size(),
		ClaimedBlocks: claimed,
	}
}

// Stats derives the global statistics and leaderboard.
func (that *GridManager) Stats() *stats.Stats {
	return stats.Compute(that.store.Size(), that.store.Snapshot(), that.registry.List())
}

// validCoordinate accepts only whole numbers inside [0, size); claims arrive
// as JSON numbers, so a fractional value like 3.5 must be rejected before
// integer conversion.
func validCoordinate(x, y float64, size int) bool {
	if x != math.Trunc(x) || y != math.Trunc(y) {
		return false
	}

	bound := float64(size)

	return x >= 0 && x < bound && y >= 0 && y < bound
}

// persistBlock writes the claim to storage when a repository is wired in.
// In-memory state is authoritative; a failed write is logged and the claim
// stands.
func (that *GridManager) persistBlock(ctx context.Context, block *entity.Block) {
	if that.repo == nil {
		return
	}

	if err := that.repo.Save(ctx, block); err != nil {
		that.logger.Error("failed to persist block", "coord", block.Coord().Key(), "error", err)
	}
}
