// Package repository declares the storage contracts the services depend on.
// internal/repository/sqlite implements all of them on one *sqlite.DB.
package repository

import (
	"context"

	"github.com/sakif/gamehub/internal/model"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	// UpdateProfile applies the non-nil fields of patch and returns the
	// stored account.
	UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.Account, error)
}

// GameRepository stores Game collectibles keyed by rawg_id.
type GameRepository interface {
	// InsertGameIfAbsent creates game unless a row with the same RawgID
	// exists, then returns the stored row. created reports which happened.
	InsertGameIfAbsent(ctx context.Context, game *model.Game) (stored *model.Game, created bool, err error)
	GetGameByID(ctx context.Context, id string) (*model.Game, error)
	GetGameByRawgID(ctx context.Context, rawgID int64) (*model.Game, error)
	// GetGamesByIDs is the batch side of the manual join. Order of the
	// result is unspecified and unknown ids are skipped. Any number of ids
	// is accepted; implementations split them into bounded queries.
	GetGamesByIDs(ctx context.Context, ids []string) ([]model.Game, error)
}

// CharacterRepository stores Character collectibles keyed by (name, game_id).
type CharacterRepository interface {
	InsertCharacterIfAbsent(ctx context.Context, character *model.Character) (stored *model.Character, created bool, err error)
	GetCharacterByID(ctx context.Context, id string) (*model.Character, error)
	GetCharacterByKey(ctx context.Context, name, gameID string) (*model.Character, error)
	GetCharactersByIDs(ctx context.Context, ids []string) ([]model.Character, error)
}

// FavoriteRepository owns the favorite edges. Add and Remove are single
// statements, so concurrent calls for the same account never lose updates.
type FavoriteRepository interface {
	// AddFavoriteGame inserts the edge if it is missing. added is false
	// when it already existed.
	AddFavoriteGame(ctx context.Context, accountID, gameID string) (added bool, err error)
	RemoveFavoriteGame(ctx context.Context, accountID, gameID string) (removed bool, err error)
	// ListFavoriteGameIDs returns game ids in the order they were favorited.
	ListFavoriteGameIDs(ctx context.Context, accountID string) ([]string, error)

	AddFavoriteCharacter(ctx context.Context, accountID, characterID string) (added bool, err error)
	RemoveFavoriteCharacter(ctx context.Context, accountID, characterID string) (removed bool, err error)
	ListFavoriteCharacterIDs(ctx context.Context, accountID string) ([]string, error)
}
