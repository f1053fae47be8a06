package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/erikbos/cinetrack/database"
	"github.com/erikbos/cinetrack/database/model"
)

type contextKey int

const contextAccessToken contextKey = iota

// LoginRequest holds the credentials of POST /api/users/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// POST /api/users/login
//
// loginHandler authenticates a user by name and password and returns an access token.
func (a *API) loginHandler(w http.ResponseWriter, r *http.Request) {
	var request LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	user, err := database.Login(r.Context(), a.repo, request.Username, request.Password, a.autoRegister)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) || errors.Is(err, model.ErrInvalidPassword) {
			a.log.Info().Str("username", request.Username).Str("request_id", requestID(r)).Msg("login failed")
			apierror(w, r, "invalid username or password", http.StatusUnauthorized)
			return
		}
		a.serveError(w, r, err)
		return
	}

	token, err := a.repo.CreateAccessToken(r.Context(), user.ID)
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	a.log.Info().Str("userid", user.ID).Str("username", user.Username).Msg("user logged in")
	serveJSON(LoginResponse{Token: token, User: makeUser(user)}, w)
}

// authmiddleware resolves the access token of a request and stores it in the context.
// Without a valid token the request is rejected if required is set, otherwise
// the handler runs anonymously.
func (a *API) authmiddleware(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			if required {
				apierror(w, r, "authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		details, err := a.repo.GetAccessToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				a.serveError(w, r, err)
				return
			}
			apierror(w, r, "invalid access token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), contextAccessToken, details)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestToken returns the token from the Authorization bearer or X-Auth-Token header.
func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, found := strings.Cut(auth, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

// getAccessTokenDetails returns the access token of an authenticated request, nil if anonymous.
func getAccessTokenDetails(r *http.Request) *model.AccessToken {
	details, _ := r.Context().Value(contextAccessToken).(*model.AccessToken)
	return details
}

// userID returns the ID of the authenticated user, empty if anonymous.
func userID(r *http.Request) string {
	if details := getAccessTokenDetails(r); details != nil {
		return details.UserID
	}
	return ""
}
