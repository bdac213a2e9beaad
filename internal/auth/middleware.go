package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can read or write the
// account id stored in a request context.
type contextKey string

const accountIDKey contextKey = "accountID"

// TokenCookie is the cookie name set by the login handler.
const TokenCookie = "token"

var errNoToken = errors.New("auth: no token")

// OptionalAuth extracts the account id if a valid token is present, but does
// NOT block the request when it is missing or invalid.
//
// Handlers read it back with AccountIDFromContext; ("", false) means the
// request is anonymous and must name its accountId explicitly.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if accountID, err := extractAccountID(r, tokens); err == nil && accountID != "" {
				r = r.WithContext(WithAccountID(r.Context(), accountID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithAccountID returns a copy of ctx carrying accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountIDFromContext retrieves the authenticated account id.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// extractAccountID prefers the Authorization header and falls back to the
// token cookie.
func extractAccountID(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", errNoToken
		}
		return tokens.Validate(strings.TrimSpace(token))
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
