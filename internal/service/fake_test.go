package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore implements every repository interface in memory, keeping the
// same uniqueness rules the SQLite schema enforces. failBatch makes the
// batch lookups fail, which is how the degraded reader path is exercised.

var (
	_ repository.AccountRepository   = (*fakeStore)(nil)
	_ repository.GameRepository      = (*fakeStore)(nil)
	_ repository.CharacterRepository = (*fakeStore)(nil)
	_ repository.FavoriteRepository  = (*fakeStore)(nil)
)

var errStoreDown = errors.New("store unreachable")

type fakeStore struct {
	nextID int

	accounts   map[string]*model.Account
	games      map[string]*model.Game
	characters map[string]*model.Character

	gameEdges      map[string][]string
	characterEdges map[string][]string

	failBatch bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:       make(map[string]*model.Account),
		games:          make(map[string]*model.Game),
		characters:     make(map[string]*model.Character),
		gameEdges:      make(map[string][]string),
		characterEdges: make(map[string][]string),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// --- accounts ---

func (f *fakeStore) CreateAccount(_ context.Context, account *model.Account) error {
	for _, a := range f.accounts {
		if a.Username == account.Username {
			return apperror.Conflict("account", "username", "")
		}
		if a.Email == account.Email {
			return apperror.Conflict("account", "email", "")
		}
	}
	account.ID = f.id("acc")
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeStore) GetAccountByID(_ context.Context, id string) (*model.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	out := *a
	return &out, nil
}

func (f *fakeStore) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, apperror.NotFound("account", email)
}

func (f *fakeStore) UpdateProfile(_ context.Context, id string, patch model.ProfilePatch) (*model.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	if patch.Username != nil {
		for otherID, other := range f.accounts {
			if otherID != id && other.Username == *patch.Username {
				return nil, apperror.Conflict("account", "username", *patch.Username)
			}
		}
		a.Username = *patch.Username
	}
	if patch.Bio != nil {
		a.Bio = *patch.Bio
	}
	if patch.ProfileImage != nil {
		a.ProfileImage = *patch.ProfileImage
	}
	if patch.BannerImage != nil {
		a.BannerImage = *patch.BannerImage
	}
	out := *a
	return &out, nil
}

// --- games ---

func (f *fakeStore) InsertGameIfAbsent(_ context.Context, game *model.Game) (*model.Game, bool, error) {
	for _, g := range f.games {
		if g.RawgID == game.RawgID {
			out := *g
			return &out, false, nil
		}
	}
	stored := *game
	stored.ID = f.id("game")
	f.games[stored.ID] = &stored
	out := stored
	return &out, true, nil
}

func (f *fakeStore) GetGameByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, apperror.NotFound("game", id)
	}
	out := *g
	return &out, nil
}

func (f *fakeStore) GetGameByRawgID(_ context.Context, rawgID int64) (*model.Game, error) {
	for _, g := range f.games {
		if g.RawgID == rawgID {
			out := *g
			return &out, nil
		}
	}
	return nil, apperror.NotFound("game", fmt.Sprintf("rawg:%d", rawgID))
}

// GetGamesByIDs returns matches in reverse request order so tests catch a
// reader that trusts the batch order.
func (f *fakeStore) GetGamesByIDs(_ context.Context, ids []string) ([]model.Game, error) {
	if f.failBatch {
		return nil, errStoreDown
	}
	out := []model.Game{}
	for i := len(ids) - 1; i >= 0; i-- {
		if g, ok := f.games[ids[i]]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

// --- characters ---

func (f *fakeStore) InsertCharacterIfAbsent(_ context.Context, character *model.Character) (*model.Character, bool, error) {
	for _, c := range f.characters {
		if c.Name == character.Name && c.GameID == character.GameID {
			out := *c
			return &out, false, nil
		}
	}
	stored := *character
	stored.ID = f.id("char")
	f.characters[stored.ID] = &stored
	out := stored
	return &out, true, nil
}

func (f *fakeStore) GetCharacterByID(_ context.Context, id string) (*model.Character, error) {
	c, ok := f.characters[id]
	if !ok {
		return nil, apperror.NotFound("character", id)
	}
	out := *c
	return &out, nil
}

func (f *fakeStore) GetCharacterByKey(_ context.Context, name, gameID string) (*model.Character, error) {
	for _, c := range f.characters {
		if c.Name == name && c.GameID == gameID {
			out := *c
			return &out, nil
		}
	}
	return nil, apperror.NotFound("character", name+"@"+gameID)
}

func (f *fakeStore) GetCharactersByIDs(_ context.Context, ids []string) ([]model.Character, error) {
	if f.failBatch {
		return nil, errStoreDown
	}
	out := []model.Character{}
	for i := len(ids) - 1; i >= 0; i-- {
		if c, ok := f.characters[ids[i]]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

// --- favorites ---

func addEdge(edges map[string][]string, accountID, id string) bool {
	for _, existing := range edges[accountID] {
		if existing == id {
			return false
		}
	}
	edges[accountID] = append(edges[accountID], id)
	return true
}

func removeEdge(edges map[string][]string, accountID, id string) bool {
	list := edges[accountID]
	for i, existing := range list {
		if existing == id {
			edges[accountID] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (f *fakeStore) AddFavoriteGame(_ context.Context, accountID, gameID string) (bool, error) {
	return addEdge(f.gameEdges, accountID, gameID), nil
}

func (f *fakeStore) RemoveFavoriteGame(_ context.Context, accountID, gameID string) (bool, error) {
	return removeEdge(f.gameEdges, accountID, gameID), nil
}

func (f *fakeStore) ListFavoriteGameIDs(_ context.Context, accountID string) ([]string, error) {
	return copyIDs(f.gameEdges[accountID]), nil
}

func (f *fakeStore) AddFavoriteCharacter(_ context.Context, accountID, characterID string) (bool, error) {
	return addEdge(f.characterEdges, accountID, characterID), nil
}

func (f *fakeStore) RemoveFavoriteCharacter(_ context.Context, accountID, characterID string) (bool, error) {
	return removeEdge(f.characterEdges, accountID, characterID), nil
}

func (f *fakeStore) ListFavoriteCharacterIDs(_ context.Context, accountID string) ([]string, error) {
	return copyIDs(f.characterEdges[accountID]), nil
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestFavorites(t *testing.T) (*FavoritesService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	logger := testLogger()
	resolver := NewResolver(store, store, logger)
	return NewFavoritesService(store, store, store, store, resolver, logger), store
}

// seedAccount stores an account directly and returns its id.
func seedAccount(t *testing.T, store *fakeStore, username string) string {
	t.Helper()
	account := &model.Account{Username: username, Email: username + "@example.com"}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("seeding account: %v", err)
	}
	return account.ID
}
