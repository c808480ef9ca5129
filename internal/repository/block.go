package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/blockclaim/blockclaim-backend/internal/entity"
)

const blocksKey = "blocks"

// BlockRepository persists claim records, one hash field per claimed
// coordinate. The in-memory grid store is authoritative; writes here are
// best-effort and a failure never rolls a claim back.
type BlockRepository interface {
	Save(ctx context.Context, block *entity.Block) error
	UpdateOwnerName(ctx context.Context, ownerID, newName string) error
	LoadAll(ctx context.Context) ([]*entity.Block, error)
}

type dbBlock struct {
	client *redis.Client
}

func NewBlockRepository(client *redis.Client) BlockRepository {
	return &dbBlock{
		client: client,
	}
}

// Save stores the block under its coordinate field. The grid store has
// already arbitrated the claim, so the field is written at most once per
// coordinate and overwrites only ever re-assert the same owner.
func (that *dbBlock) Save(ctx context.Context, block *entity.Block) error {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("could not marshal block: %w", err)
	}

	if err = that.client.HSet(ctx, blocksKey, block.Coord().Key(), blockJSON).Err(); err != nil {
		return fmt.Errorf("failed to set block: %w", err)
	}

	return nil
}

// UpdateOwnerName rewrites the stored records owned by ownerID with the new
// display name.
func (that *dbBlock) UpdateOwnerName(ctx context.Context, ownerID, newName string) error {
	blocks, err := that.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load blocks: %w", err)
	}

	for _, block := range blocks {
		if block.Owner != ownerID {
			continue
		}

		block.OwnerName = newName
		if err = that.Save(ctx, block); err != nil {
			return fmt.Errorf("failed to update block %s: %w", block.Coord().Key(), err)
		}
	}

	return nil
}

// LoadAll returns every persisted claim record. Fields that fail to decode
// are skipped; a partial reload beats refusing to start.
func (that *dbBlock) LoadAll(ctx context.Context) ([]*entity.Block, error) {
	fields, err := that.client.HGetAll(ctx, blocksKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get blocks: %w", err)
	}

	blocks := make([]*entity.Block, 0, len(fields))
	for _, raw := range fields {
		var block entity.Block
		if err = json.Unmarshal([]byte(raw), &block); err != nil {
			continue
		}

		blocks = append(blocks, &block)
	}

	return blocks, nil
}
