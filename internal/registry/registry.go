package registry

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockclaim/blockclaim-backend/internal/apperror"
	"github.com/blockclaim/blockclaim-backend/internal/entity"
)

const namePickAttempts = 10

// Registry tracks the live set of connected users, keyed both by connection
// and by user ID. All methods hand out copies; callers never share the
// registry's own user records.
type Registry struct {
	mu         sync.RWMutex
	byConn     map[string]*entity.User
	byID       map[string]*entity.User
	usedColors map[string]struct{}
	nextSeq    int64
}

func New() *Registry {
	return &Registry{
		byConn:     make(map[string]*entity.User),
		byID:       make(map[string]*entity.User),
		usedColors: make(map[string]struct{}),
	}
}

// Register allocates a fresh user for the given connection, with a display
// name and color preferably not held by any connected user.
func (that *Registry) Register(connID string) entity.User {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextSeq++

	user := &entity.User{
		ID:       uuid.NewString(),
		Name:     that.pickName(),
		Color:    that.pickColor(),
		JoinedAt: time.Now().UTC(),
		Seq:      that.nextSeq,
	}

	that.byConn[connID] = user
	that.byID[user.ID] = user
	that.usedColors[user.Color] = struct{}{}

	return *user
}

// Unregister removes the connection's user and releases its color back to
// the palette. Blocks the user claimed are untouched.
func (that *Registry) Unregister(connID string) (entity.User, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	user, ok := that.byConn[connID]
	if !ok {
		return entity.User{}, false
	}

	delete(that.byConn, connID)
	delete(that.byID, user.ID)
	delete(that.usedColors, user.Color)

	return *user, true
}

// GetByConn returns the user bound to the given connection.
func (that *Registry) GetByConn(connID string) (entity.User, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	user, ok := that.byConn[connID]
	if !ok {
		return entity.User{}, false
	}

	return *user, true
}

// Rename trims and bounds the new name, then applies it. An empty trimmed
// name is rejected and leaves the user unchanged.
func (that *Registry) Rename(userID, newName string) (entity.User, error) {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return entity.User{}, apperror.ErrEmptyName
	}

	if runes := []rune(trimmed); len(runes) > entity.MaxNameLength {
		trimmed = string(runes[:entity.MaxNameLength])
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	user, ok := that.byID[userID]
	if !ok {
		return entity.User{}, apperror.ErrIdentityNotFound
	}

	user.Name = trimmed

	return *user, nil
}

// IncrementBlocks bumps the user's claim tally; a user that already
// disconnected is ignored.
func (that *Registry) IncrementBlocks(userID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if user, ok := that.byID[userID]; ok {
		user.BlocksOwned++
	}
}

// List returns all connected users in registration order.
func (that *Registry) List() []entity.User {
	that.mu.RLock()
	defer that.mu.RUnlock()

	users := make([]entity.User, 0, len(that.byConn))
	for _, user := range that.byConn {
		users = append(users, *user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Seq < users[j].Seq
	})

	return users
}

// Count returns the number of connected users.
func (that *Registry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.byConn)
}

// pickColor prefers a random unused palette color and falls back to a
// procedurally generated one when the palette is exhausted. Callers hold mu.
func (that *Registry) pickColor() string {
	available := make([]string, 0, len(colorPalette))
	for _, color := range colorPalette {
		if _, used := that.usedColors[color]; !used {
			available = append(available, color)
		}
	}

	if len(available) == 0 {
		return randomFallbackColor()
	}

	return available[rand.Intn(len(available))]
}

// pickName retries a few times to find a name no connected user holds;
// uniqueness is best-effort. Callers hold mu.
func (that *Registry) pickName() string {
	name := randomName()

	for attempt := 0; attempt < namePickAttempts; attempt++ {
		if !that.nameTaken(name) {
			return name
		}
		name = randomName()
	}

	return name
}

func (that *Registry) nameTaken(name string) bool {
	for _, user := range that.byConn {
		if user.Name == name {
			return true
		}
	}

	return false
}
