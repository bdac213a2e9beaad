package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gamehub/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

// SET SEMANTICS IN ONE STATEMENT:
// An edge is added with INSERT ... ON CONFLICT DO NOTHING and removed with a
// plain DELETE. Neither reads the current list first, so two concurrent
// requests for the same account cannot overwrite each other's change.

func (db *DB) AddFavoriteGame(ctx context.Context, accountID, gameID string) (bool, error) {
	return db.addEdge(ctx,
		`INSERT INTO favorite_games (account_id, game_id) VALUES (?, ?)
		 ON CONFLICT (account_id, game_id) DO NOTHING`,
		accountID, gameID)
}

func (db *DB) RemoveFavoriteGame(ctx context.Context, accountID, gameID string) (bool, error) {
	return db.removeEdge(ctx,
		`DELETE FROM favorite_games WHERE account_id = ? AND game_id = ?`,
		accountID, gameID)
}

func (db *DB) ListFavoriteGameIDs(ctx context.Context, accountID string) ([]string, error) {
	return db.listEdges(ctx,
		`SELECT game_id FROM favorite_games WHERE account_id = ? ORDER BY seq`,
		accountID)
}

func (db *DB) AddFavoriteCharacter(ctx context.Context, accountID, characterID string) (bool, error) {
	return db.addEdge(ctx,
		`INSERT INTO favorite_characters (account_id, character_id) VALUES (?, ?)
		 ON CONFLICT (account_id, character_id) DO NOTHING`,
		accountID, characterID)
}

func (db *DB) RemoveFavoriteCharacter(ctx context.Context, accountID, characterID string) (bool, error) {
	return db.removeEdge(ctx,
		`DELETE FROM favorite_characters WHERE account_id = ? AND character_id = ?`,
		accountID, characterID)
}

func (db *DB) ListFavoriteCharacterIDs(ctx context.Context, accountID string) ([]string, error) {
	return db.listEdges(ctx,
		`SELECT character_id FROM favorite_characters WHERE account_id = ? ORDER BY seq`,
		accountID)
}

func (db *DB) addEdge(ctx context.Context, query, accountID, targetID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx, query, accountID, targetID)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding favorite %s→%s: %w", accountID, targetID, err)
	}
	return affectedOne(result)
}

func (db *DB) removeEdge(ctx context.Context, query, accountID, targetID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx, query, accountID, targetID)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing favorite %s→%s: %w", accountID, targetID, err)
	}
	return affectedOne(result)
}

func (db *DB) listEdges(ctx context.Context, query, accountID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites of %s: %w", accountID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}
	return ids, nil
}

func affectedOne(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}
