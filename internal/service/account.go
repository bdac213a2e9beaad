package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/auth"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/repository"
)

const (
	MaxBioLength      = 500
	MaxUsernameLength = 50
)

// AccountService handles signup, login, and profile reads and updates.
//
// DEPENDENCIES (injected via NewAccountService):
//   - accounts   repository.AccountRepository → account rows
//   - favorites  *FavoritesService            → materialized favorite games
//   - tokens     *auth.TokenService           → JWTs issued at signup/login
//   - passwords  *auth.PasswordService        → bcrypt hashing
type AccountService struct {
	accounts  repository.AccountRepository
	favorites *FavoritesService
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAccountService(
	accounts repository.AccountRepository,
	favorites *FavoritesService,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		favorites: favorites,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account with the token issued for it, so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	Account *model.Account
	Token   string
}

// AccountView is an account together with its materialized favorite games.
type AccountView struct {
	Account       *model.Account
	FavoriteGames *FavoriteGames
}

// SignUp creates an account and issues a token for it.
// A taken username or email is reported as apperror.ErrConflict naming the
// field, straight from the storage constraint.
func (s *AccountService) SignUp(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "email is not a valid address")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	account := &model.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create account",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info("account created",
		slog.String("accountID", account.ID),
		slog.String("username", account.Username),
	)

	return s.issue(account)
}

// Login checks the email/password pair. Unknown email and wrong password
// produce the same apperror.ErrUnauthorized so callers cannot probe which
// emails are registered.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if err := s.passwords.Verify(account.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("verifying password: %w", err)
	}

	s.logger.Info("account logged in", slog.String("accountID", account.ID))
	return s.issue(account)
}

// GetAccount returns the account and its favorite games.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*AccountView, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	favorites, err := s.favorites.materializeGames(ctx, id)
	if err != nil {
		return nil, err
	}

	return &AccountView{Account: account, FavoriteGames: favorites}, nil
}

// UpdateProfile applies only the fields present in patch.
//
// bio is limited to MaxBioLength characters (runes, not bytes). A username
// that is already taken comes back from storage as apperror.ErrConflict.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.Account, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		patch.Username = &username
	}
	if patch.Bio != nil && utf8.RuneCountInString(*patch.Bio) > MaxBioLength {
		return nil, apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
	}

	account, err := s.accounts.UpdateProfile(ctx, id, patch)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to update profile",
			slog.String("accountID", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	if !patch.Empty() {
		s.logger.Info("profile updated", slog.String("accountID", id))
	}
	return account, nil
}

var errAuthDisabled = errors.New("authentication is disabled")

func (s *AccountService) issue(account *model.Account) (*AuthResult, error) {
	if s.tokens == nil {
		return nil, errAuthDisabled
	}
	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for account %s: %w", account.ID, err)
	}
	return &AuthResult{Account: account, Token: token}, nil
}

func validateUsername(username string) error {
	if username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	return nil
}
