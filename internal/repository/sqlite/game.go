package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/repository"
)

var _ repository.GameRepository = (*DB)(nil)

const gameColumns = `id, rawg_id, title, description, image, rating, released, platforms, genres, created_at`

// InsertGameIfAbsent is the storage half of find-or-create.
//
// ON CONFLICT(rawg_id) DO NOTHING makes the insert a no-op when another
// request already cached this game; either way the canonical row is read
// back, so every caller sees the same id.
func (db *DB) InsertGameIfAbsent(ctx context.Context, game *model.Game) (*model.Game, bool, error) {
	platforms, err := encodeList(game.Platforms)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: encoding platforms: %w", err)
	}
	genres, err := encodeList(game.Genres)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: encoding genres: %w", err)
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO games (`+gameColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (rawg_id) DO NOTHING`,
		xid.New().String(),
		game.RawgID,
		game.Title,
		game.Description,
		game.Image,
		game.Rating,
		game.Released,
		platforms,
		genres,
		time.Now(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: inserting game (rawgID=%d): %w", game.RawgID, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	stored, err := db.GetGameByRawgID(ctx, game.RawgID)
	if err != nil {
		return nil, false, err
	}
	return stored, inserted == 1, nil
}

// GetGameByID returns apperror.ErrNotFound if no game has that id.
func (db *DB) GetGameByID(ctx context.Context, id string) (*model.Game, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("sqlite: getting game %s: %w", id, err)
	}
	return game, nil
}

func (db *DB) GetGameByRawgID(ctx context.Context, rawgID int64) (*model.Game, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE rawg_id = ?`, rawgID)

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("game", "rawg:"+strconv.FormatInt(rawgID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting game by rawgID %d: %w", rawgID, err)
	}
	return game, nil
}

// GetGamesByIDs runs SELECT ... WHERE id IN (...) once per batchSize ids.
// Unknown ids are skipped; order is unspecified.
func (db *DB) GetGamesByIDs(ctx context.Context, ids []string) ([]model.Game, error) {
	games := make([]model.Game, 0, len(ids))
	for _, chunk := range chunkIDs(ids) {
		var err error
		if games, err = db.appendGames(ctx, games, chunk); err != nil {
			return nil, err
		}
	}
	return games, nil
}

func (db *DB) appendGames(ctx context.Context, games []model.Game, ids []string) ([]model.Game, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id IN (`+placeholders(len(ids))+`)`,
		toArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batch-getting games: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}
	return games, nil
}

func scanGame(row rowScanner) (*model.Game, error) {
	var (
		g         model.Game
		platforms string
		genres    string
	)
	err := row.Scan(
		&g.ID,
		&g.RawgID,
		&g.Title,
		&g.Description,
		&g.Image,
		&g.Rating,
		&g.Released,
		&platforms,
		&genres,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if g.Platforms, err = decodeList(platforms); err != nil {
		return nil, fmt.Errorf("decoding platforms: %w", err)
	}
	if g.Genres, err = decodeList(genres); err != nil {
		return nil, fmt.Errorf("decoding genres: %w", err)
	}
	return &g, nil
}
