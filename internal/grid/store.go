package grid

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blockclaim/blockclaim-backend/internal/apperror"
	"github.com/blockclaim/blockclaim-backend/internal/entity"
)

// Store is the sole writer of claim records. Claim arbitration is a single
// atomic check-and-set per coordinate, so concurrent attempts on the same
// cell always produce exactly one winner and every loser observes the
// committed winning record. Unrelated coordinates never contend.
type Store struct {
	size    int
	blocks  sync.Map // entity.Coord -> *entity.Block
	claimed atomic.Int64
	seq     atomic.Int64
}

func NewStore(size int) *Store {
	return &Store{size: size}
}

func (that *Store) Size() int {
	return that.size
}

// TryClaim creates the claim record for coord if none exists yet.
// If the cell is already owned, the existing record is returned together
// with ErrBlockAlreadyClaimed; losing a race is an expected outcome, not
// a system failure.
func (that *Store) TryClaim(coord entity.Coord, ownerID, ownerName, ownerColor string) (*entity.Block, error) {
	if !coord.Within(that.size) {
		return nil, fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCoordinate, coord.X, coord.Y)
	}

	block := &entity.Block{
		X:          coord.X,
		Y:          coord.Y,
		Owner:      ownerID,
		OwnerName:  ownerName,
		OwnerColor: ownerColor,
		ClaimedAt:  time.Now().UTC(),
		// assigned before the record becomes visible to other goroutines;
		// losing attempts leave gaps in the sequence, which is fine.
		Seq: that.seq.Add(1),
	}

	existing, loaded := that.blocks.LoadOrStore(coord, block)
	if loaded {
		return existing.(*entity.Block), apperror.ErrBlockAlreadyClaimed
	}

	that.claimed.Add(1)

	return block, nil
}

// Restore loads a previously persisted block without arbitration, used when
// rebuilding state at startup. Out-of-bounds records and duplicate
// coordinates are skipped.
func (that *Store) Restore(block *entity.Block) bool {
	if block == nil || !block.Coord().Within(that.size) {
		return false
	}

	block.Seq = that.seq.Add(1)

	if _, loaded := that.blocks.LoadOrStore(block.Coord(), block); loaded {
		return false
	}

	that.claimed.Add(1)

	return true
}

// Get returns a copy of the claim record for coord, if any.
func (that *Store) Get(coord entity.Coord) (entity.Block, bool) {
	value, ok := that.blocks.Load(coord)
	if !ok {
		return entity.Block{}, false
	}

	return *value.(*entity.Block), true
}

// Snapshot returns a copy of all claim records. The snapshot is internally
// consistent per record and does not block concurrent claims.
func (that *Store) Snapshot() map[entity.Coord]entity.Block {
	snapshot := make(map[entity.Coord]entity.Block)

	that.blocks.Range(func(key, value any) bool {
		snapshot[key.(entity.Coord)] = *value.(*entity.Block)
		return true
	})

	return snapshot
}

// RenameOwner updates OwnerName on every block owned by ownerID and reports
// how many records changed. Each record is replaced atomically; concurrent
// readers see either the old or the new name, never a partial record.
func (that *Store) RenameOwner(ownerID, newName string) int {
	var updated int

	that.blocks.Range(func(key, value any) bool {
		block := value.(*entity.Block)
		if block.Owner != ownerID {
			return true
		}

		renamed := *block
		renamed.OwnerName = newName
		that.blocks.Store(key, &renamed)
		updated++

		return true
	})

	return updated
}

// Stats returns the claimed and total cell counts.
func (that *Store) Stats() (claimed, total int) {
	return int(that.claimed.Load()), that.size * that.size
}
