package stats

import (
	"sort"

	"github.com/blockclaim/blockclaim-backend/internal/entity"
)

const leaderboardSize = 10

// Stats is the derived global view served by /api/stats.
type Stats struct {
	TotalBlocks    int                `json:"totalBlocks"`
	TotalClaimed   int                `json:"totalClaimed"`
	TotalUnclaimed int                `json:"totalUnclaimed"`
	UniqueOwners   int                `json:"uniqueOwners"`
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
	ConnectedUsers int                `json:"connectedUsers"`
	Users          []UserInfo         `json:"users"`
}

// LeaderboardEntry ranks one owner by blocks claimed. Owners stay on the
// leaderboard after disconnecting; their claims are permanent.
type LeaderboardEntry struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	BlocksOwned int    `json:"blocksOwned"`
}

// UserInfo is the public descriptor of one connected user.
type UserInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	BlocksOwned int    `json:"blocksOwned"`
}

type ownerTally struct {
	name     string
	color    string
	blocks   int
	firstSeq int64
}

// Compute derives stats from point-in-time snapshots of the grid and the
// connected user set. It is a pure function and safe to call concurrently
// with mutations of either source.
func Compute(gridSize int, blocks map[entity.Coord]entity.Block, users []entity.User) *Stats {
	tallies := make(map[string]*ownerTally)

	for _, block := range blocks {
		tally, ok := tallies[block.Owner]
		if !ok {
			tally = &ownerTally{
				name:     block.OwnerName,
				color:    block.OwnerColor,
				firstSeq: block.Seq,
			}
			tallies[block.Owner] = tally
		}

		tally.blocks++
		if block.Seq < tally.firstSeq {
			tally.firstSeq = block.Seq
		}
	}

	owners := make([]*ownerTally, 0, len(tallies))
	for _, tally := range tallies {
		owners = append(owners, tally)
	}

	// by blocks owned descending, ties by earliest claim
	sort.Slice(owners, func(i, j int) bool {
		if owners[i].blocks != owners[j].blocks {
			return owners[i].blocks > owners[j].blocks
		}
		return owners[i].firstSeq < owners[j].firstSeq
	})

	leaderboard := make([]LeaderboardEntry, 0, leaderboardSize)
	for _, owner := range owners {
		if len(leaderboard) == leaderboardSize {
			break
		}

		leaderboard = append(leaderboard, LeaderboardEntry{
			Name:        owner.name,
			Color:       owner.color,
			BlocksOwned: owner.blocks,
		})
	}

	userInfos := make([]UserInfo, 0, len(users))
	for _, user := range users {
		userInfos = append(userInfos, UserInfo{
			ID:          user.ID,
			Name:        user.Name,
			Color:       user.Color,
			BlocksOwned: user.BlocksOwned,
		})
	}

	totalBlocks := gridSize * gridSize

	return &Stats{
		TotalBlocks:    totalBlocks,
		TotalClaimed:   len(blocks),
		TotalUnclaimed: totalBlocks - len(blocks),
		UniqueOwners:   len(tallies),
		Leaderboard:    leaderboard,
		ConnectedUsers: len(users),
		Users:          userInfos,
	}
}
