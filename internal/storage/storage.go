package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/questforge/questforge/pkg/game"
)

// Storage persists game definitions. The node mutation handlers load a
// game, mutate its tree and save it back; the play side only reads.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Game operations
	SaveGame(ctx context.Context, g *game.Game) error
	LoadGame(ctx context.Context, id uuid.UUID) (*game.Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ListGames(ctx context.Context) ([]*game.Game, error)
}
