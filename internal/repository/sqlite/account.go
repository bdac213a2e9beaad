package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/repository"
)

var _ repository.AccountRepository = (*DB)(nil)

const accountColumns = `id, username, email, password_hash, profile_image, banner_image, bio, created_at, updated_at`

// CreateAccount inserts a new account, generating its id and timestamps.
// A duplicate username or email surfaces as apperror.ErrConflict naming the
// column.
func (db *DB) CreateAccount(ctx context.Context, account *model.Account) error {
	now := time.Now()
	account.ID = xid.New().String()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.ProfileImage,
		account.BannerImage,
		account.Bio,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if col, ok := uniqueViolation(err); ok {
			return apperror.Conflict("account", col, "")
		}
		return fmt.Errorf("sqlite: creating account: %w", err)
	}

	return nil
}

// GetAccountByID returns apperror.ErrNotFound if no account has that id.
func (db *DB) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", id)
		}
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, err)
	}
	return account, nil
}

// GetAccountByEmail is used by login.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", email)
		}
		return nil, fmt.Errorf("sqlite: getting account by email: %w", err)
	}
	return account, nil
}

// UpdateProfile builds the SET clause from the non-nil patch fields only, so
// fields the caller did not send are never overwritten with stale values.
func (db *DB) UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.Account, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if patch.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *patch.Username)
	}
	if patch.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *patch.Bio)
	}
	if patch.ProfileImage != nil {
		sets = append(sets, "profile_image = ?")
		args = append(args, *patch.ProfileImage)
	}
	if patch.BannerImage != nil {
		sets = append(sets, "banner_image = ?")
		args = append(args, *patch.BannerImage)
	}

	if len(sets) == 0 {
		return db.GetAccountByID(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	result, err := db.conn.ExecContext(ctx,
		`UPDATE accounts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if col, ok := uniqueViolation(err); ok {
			value := ""
			if col == "username" && patch.Username != nil {
				value = *patch.Username
			}
			return nil, apperror.Conflict("account", col, value)
		}
		return nil, fmt.Errorf("sqlite: updating account %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("account", id)
	}

	return db.GetAccountByID(ctx, id)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.ProfileImage,
		&a.BannerImage,
		&a.Bio,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
