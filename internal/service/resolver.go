// Package service contains the business logic of the API.
//
// THE LAYERS:
//
//	Handler (HTTP)        → parses requests, writes responses
//	Service (this package) → validates, enforces rules, orchestrates
//	Repository (storage)  → reads/writes the database
//
// Services depend on the interfaces in internal/repository, never on the
// sqlite package, so tests swap in in-memory fakes.
//
// The favorites flow is split the same way the data flows:
//
//	Resolver          → make sure the collectible exists locally
//	FavoritesService  → add/remove the edge, then materialize the set
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

// Resolver maps an upstream payload onto a local collectible, creating it on
// first reference.
type Resolver struct {
	games      repository.GameRepository
	characters repository.CharacterRepository
	logger     *slog.Logger
}

func NewResolver(games repository.GameRepository, characters repository.CharacterRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		games:      games,
		characters: characters,
		logger:     logger,
	}
}

// ResolveGame finds the game with payload.RawgID or creates it.
//
// FIND-OR-CREATE WITHOUT A RACE:
// The repository inserts with ON CONFLICT DO NOTHING and then reads the row
// back, so two concurrent resolves of the same rawgId both get the row that
// won. An existing row is returned as-is; a newer payload never overwrites it.
func (r *Resolver) ResolveGame(ctx context.Context, payload model.GamePayload) (*model.Game, error) {
	if payload.RawgID <= 0 {
		return nil, apperror.ValidationFailed("rawgId", "game rawgId is required")
	}

	game, created, err := r.games.InsertGameIfAbsent(ctx, &model.Game{
		RawgID:      payload.RawgID,
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		Image:       payload.Image,
		Rating:      payload.Rating,
		Released:    payload.Released,
		Platforms:   orEmpty(payload.Platforms),
		Genres:      orEmpty(payload.Genres),
	})
	if err != nil {
		r.logger.Error("failed to resolve game",
			slog.Int64("rawgID", payload.RawgID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resolving game (rawgID=%d): %w", payload.RawgID, err)
	}

	if created {
		r.logger.Info("game cached",
			slog.String("id", game.ID),
			slog.Int64("rawgID", game.RawgID),
			slog.String("title", game.Title),
		)
	}
	return game, nil
}

// ResolveCharacter finds the character keyed by (name, gameId) or creates it.
// Name and gameId are trimmed before matching, so " Master Chief" and
// "Master Chief" are the same character.
func (r *Resolver) ResolveCharacter(ctx context.Context, payload model.CharacterPayload) (*model.Character, error) {
	name := strings.TrimSpace(payload.Name)
	gameID := strings.TrimSpace(payload.GameID)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "character name is required")
	}
	if gameID == "" {
		return nil, apperror.ValidationFailed("gameId", "character gameId is required")
	}

	character, created, err := r.characters.InsertCharacterIfAbsent(ctx, &model.Character{
		Name:        name,
		GameID:      gameID,
		GameTitle:   payload.GameTitle,
		Description: payload.Description,
		Image:       payload.Image,
		Aliases:     dedupe(payload.Aliases),
		Gender:      payload.Gender,
		Origin:      payload.Origin,
		GiantBombID: payload.GiantBombID,
		RawgID:      payload.RawgID,
	})
	if err != nil {
		r.logger.Error("failed to resolve character",
			slog.String("name", name),
			slog.String("gameID", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resolving character %q (game %s): %w", name, gameID, err)
	}

	if created {
		r.logger.Info("character cached",
			slog.String("id", character.ID),
			slog.String("name", character.Name),
			slog.String("gameID", character.GameID),
		)
	}
	return character, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// dedupe keeps the first occurrence of each non-blank alias.
func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// GetGame returns the cached game with the given local id.
func (r *Resolver) GetGame(ctx context.Context, id string) (*model.Game, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}
	return r.games.GetGameByID(ctx, id)
}

func (r *Resolver) GetCharacter(ctx context.Context, id string) (*model.Character, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}
	return r.characters.GetCharacterByID(ctx, id)
}
