package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/repository"
)

// FavoriteGames is a materialized favorites list.
//
// Degraded is true when the edge list was read but the games could not be
// fetched. Items is then empty even though the account may have favorites,
// and the caller can tell that apart from a genuinely empty list.
type FavoriteGames struct {
	Items    []model.Game
	Degraded bool
}

// FavoriteCharacters is the character counterpart of FavoriteGames.
type FavoriteCharacters struct {
	Items    []model.Character
	Degraded bool
}

// FavoritesService adds and removes favorite edges and materializes an
// account's favorites into full records.
type FavoritesService struct {
	accounts   repository.AccountRepository
	games      repository.GameRepository
	characters repository.CharacterRepository
	favorites  repository.FavoriteRepository
	resolver   *Resolver
	logger     *slog.Logger
}

func NewFavoritesService(
	accounts repository.AccountRepository,
	games repository.GameRepository,
	characters repository.CharacterRepository,
	favorites repository.FavoriteRepository,
	resolver *Resolver,
	logger *slog.Logger,
) *FavoritesService {
	return &FavoritesService{
		accounts:   accounts,
		games:      games,
		characters: characters,
		favorites:  favorites,
		resolver:   resolver,
		logger:     logger,
	}
}

// =========================================================================
// GAMES
// =========================================================================

// AddGameFavorite resolves the game, adds it to the account's favorites if it
// is not already there, and returns the current list.
//
// Adding the same game twice leaves exactly one edge: the repository's insert
// is a no-op on the (account, game) unique key.
func (s *FavoritesService) AddGameFavorite(ctx context.Context, accountID string, payload model.GamePayload) (*FavoriteGames, error) {
	accountID, err := requireID("accountId", accountID)
	if err != nil {
		return nil, err
	}

	game, err := s.resolver.ResolveGame(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	added, err := s.favorites.AddFavoriteGame(ctx, accountID, game.ID)
	if err != nil {
		s.logger.Error("failed to add favorite game",
			slog.String("accountID", accountID),
			slog.String("gameID", game.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding favorite game: %w", err)
	}
	if added {
		s.logger.Info("favorite game added",
			slog.String("accountID", accountID),
			slog.String("gameID", game.ID),
		)
	}

	return s.materializeGames(ctx, accountID)
}

// RemoveGameFavorite drops gameID from the account's favorites. Removing a
// game that is not a favorite is not an error.
func (s *FavoritesService) RemoveGameFavorite(ctx context.Context, accountID, gameID string) (*FavoriteGames, error) {
	accountID, err := requireID("accountId", accountID)
	if err != nil {
		return nil, err
	}
	gameID, err = requireID("gameId", gameID)
	if err != nil {
		return nil, err
	}

	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	removed, err := s.favorites.RemoveFavoriteGame(ctx, accountID, gameID)
	if err != nil {
		s.logger.Error("failed to remove favorite game",
			slog.String("accountID", accountID),
			slog.String("gameID", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("removing favorite game: %w", err)
	}
	if removed {
		s.logger.Info("favorite game removed",
			slog.String("accountID", accountID),
			slog.String("gameID", gameID),
		)
	}

	return s.materializeGames(ctx, accountID)
}

// FavoriteGames returns the account's favorite games in the order they were
// added.
func (s *FavoritesService) FavoriteGames(ctx context.Context, accountID string) (*FavoriteGames, error) {
	accountID, err := requireID("accountId", accountID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.materializeGames(ctx, accountID)
}

// =========================================================================
// CHARACTERS
// =========================================================================

// AddCharacterFavorite resolves the character and adds it to the account's
// favorites. It returns the stored character (created or found).
func (s *FavoritesService) AddCharacterFavorite(ctx context.Context, accountID string, payload model.CharacterPayload) (*model.Character, error) {
	accountID, err := requireID("accountId", accountID)
	if err != nil {
		return nil, err
	}

	character, err := s.resolver.ResolveCharacter(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	added, err := s.favorites.AddFavoriteCharacter(ctx, accountID, character.ID)
	if err != nil {
		s.logger.Error("failed to add favorite character",
			slog.String("accountID", accountID),
			slog.String("characterID", character.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding favorite character: %w", err)
	}
	if added {
		s.logger.Info("favorite character added",
			slog.String("accountID", accountID),
			slog.String("characterID", character.ID),
		)
	}

	return character, nil
}

func (s *FavoritesService) RemoveCharacterFavorite(ctx context.Context, accountID, characterID string) error {
	accountID, err := requireID("accountId", accountID)
	if err != nil {
		return err
	}
	characterID, err = requireID("characterId", characterID)
	if err != nil {
		return err
	}

	if err := s.requireAccount(ctx, accountID); err != nil {
		return err
	}

	removed, err := s.favorites.RemoveFavoriteCharacter(ctx, accountID, characterID)
	if err != nil {
		s.logger.Error("failed to remove favorite character",
			slog.String("accountID", accountID),
			slog.String("characterID", characterID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("removing favorite character: %w", err)
	}
	if removed {
		s.logger.Info("favorite character removed",
			slog.String("accountID", accountID),
			slog.String("characterID", characterID),
		)
	}
	return nil
}

func (s *FavoritesService) FavoriteCharacters(ctx context.Context, accountID string) (*FavoriteCharacters, error) {
	accountID, err := requireID("accountId", accountID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.materializeCharacters(ctx, accountID)
}

// =========================================================================
// READER
// =========================================================================
//
// MANUAL JOIN:
// Materializing is two explicit steps: read the ordered edge ids, then fetch
// the collectibles with one batch query. The batch result comes back in
// arbitrary order and is re-sorted to the edge order here.
//
// The batch fetch is the one place a storage failure is absorbed: the list
// degrades to empty with Degraded set, instead of failing the whole request.

func (s *FavoritesService) materializeGames(ctx context.Context, accountID string) (*FavoriteGames, error) {
	ids, err := s.favorites.ListFavoriteGameIDs(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing favorite games: %w", err)
	}
	if len(ids) == 0 {
		return &FavoriteGames{Items: []model.Game{}}, nil
	}

	games, err := s.games.GetGamesByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("favorite games degraded to empty",
			slog.String("accountID", accountID),
			slog.Int("edges", len(ids)),
			slog.String("error", err.Error()),
		)
		return &FavoriteGames{Items: []model.Game{}, Degraded: true}, nil
	}

	byID := make(map[string]model.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	items := make([]model.Game, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			items = append(items, g)
		}
	}
	return &FavoriteGames{Items: items}, nil
}

func (s *FavoritesService) materializeCharacters(ctx context.Context, accountID string) (*FavoriteCharacters, error) {
	ids, err := s.favorites.ListFavoriteCharacterIDs(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing favorite characters: %w", err)
	}
	if len(ids) == 0 {
		return &FavoriteCharacters{Items: []model.Character{}}, nil
	}

	characters, err := s.characters.GetCharactersByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("favorite characters degraded to empty",
			slog.String("accountID", accountID),
			slog.Int("edges", len(ids)),
			slog.String("error", err.Error()),
		)
		return &FavoriteCharacters{Items: []model.Character{}, Degraded: true}, nil
	}

	byID := make(map[string]model.Character, len(characters))
	for _, c := range characters {
		byID[c.ID] = c
	}
	items := make([]model.Character, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			items = append(items, c)
		}
	}
	return &FavoriteCharacters{Items: items}, nil
}

// requireAccount returns apperror.ErrNotFound if the account does not exist.
func (s *FavoritesService) requireAccount(ctx context.Context, accountID string) error {
	if _, err := s.accounts.GetAccountByID(ctx, accountID); err != nil {
		return err
	}
	return nil
}

func requireID(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	return value, nil
}
