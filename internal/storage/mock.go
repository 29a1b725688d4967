package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/questforge/questforge/pkg/game"
)

// MockStorage is an in-memory Storage for tests. Games are deep-copied
// through JSON so tests cannot mutate stored state by accident. Error
// fields let tests inject failures.
type MockStorage struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*game.Game

	PingErr error
	SaveErr error
	LoadErr error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		games: make(map[uuid.UUID]*game.Game),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGame(ctx context.Context, g *game.Game) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	copied, err := copyGame(g)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = copied
	return nil
}

func (m *MockStorage) LoadGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}

	m.mu.RLock()
	g, ok := m.games[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil // not found
	}
	return copyGame(g)
}

func (m *MockStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *MockStorage) ListGames(ctx context.Context) ([]*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	games := make([]*game.Game, 0, len(m.games))
	for _, g := range m.games {
		copied, err := copyGame(g)
		if err != nil {
			return nil, err
		}
		games = append(games, copied)
	}
	return games, nil
}

func copyGame(g *game.Game) (*game.Game, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	var copied game.Game
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}
