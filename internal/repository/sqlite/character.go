package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/repository"
)

var _ repository.CharacterRepository = (*DB)(nil)

const characterColumns = `id, name, game_id, game_title, description, image, aliases, gender, origin, giant_bomb_id, rawg_id, created_at`

// InsertCharacterIfAbsent mirrors InsertGameIfAbsent on the compound
// (name, game_id) key.
func (db *DB) InsertCharacterIfAbsent(ctx context.Context, character *model.Character) (*model.Character, bool, error) {
	aliases, err := encodeList(character.Aliases)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: encoding aliases: %w", err)
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO characters (`+characterColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name, game_id) DO NOTHING`,
		xid.New().String(),
		character.Name,
		character.GameID,
		character.GameTitle,
		character.Description,
		character.Image,
		aliases,
		character.Gender,
		character.Origin,
		character.GiantBombID,
		character.RawgID,
		time.Now(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: inserting character %q (game %s): %w",
			character.Name, character.GameID, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	stored, err := db.GetCharacterByKey(ctx, character.Name, character.GameID)
	if err != nil {
		return nil, false, err
	}
	return stored, inserted == 1, nil
}

func (db *DB) GetCharacterByID(ctx context.Context, id string) (*model.Character, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)

	character, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("character", id)
		}
		return nil, fmt.Errorf("sqlite: getting character %s: %w", id, err)
	}
	return character, nil
}

func (db *DB) GetCharacterByKey(ctx context.Context, name, gameID string) (*model.Character, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE name = ? AND game_id = ?`,
		name, gameID)

	character, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("character", name+"@"+gameID)
		}
		return nil, fmt.Errorf("sqlite: getting character %q (game %s): %w", name, gameID, err)
	}
	return character, nil
}

func (db *DB) GetCharactersByIDs(ctx context.Context, ids []string) ([]model.Character, error) {
	characters := make([]model.Character, 0, len(ids))
	for _, chunk := range chunkIDs(ids) {
		var err error
		if characters, err = db.appendCharacters(ctx, characters, chunk); err != nil {
			return nil, err
		}
	}
	return characters, nil
}

func (db *DB) appendCharacters(ctx context.Context, characters []model.Character, ids []string) ([]model.Character, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id IN (`+placeholders(len(ids))+`)`,
		toArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batch-getting characters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning character row: %w", err)
		}
		characters = append(characters, *character)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating characters: %w", err)
	}
	return characters, nil
}

func scanCharacter(row rowScanner) (*model.Character, error) {
	var (
		c       model.Character
		aliases string
	)
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.GameID,
		&c.GameTitle,
		&c.Description,
		&c.Image,
		&aliases,
		&c.Gender,
		&c.Origin,
		&c.GiantBombID,
		&c.RawgID,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.Aliases, err = decodeList(aliases); err != nil {
		return nil, fmt.Errorf("decoding aliases: %w", err)
	}
	return &c, nil
}
