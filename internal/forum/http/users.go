package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/service"
	"github.com/parleyhq/parley/pkg/httpx"
	"github.com/parleyhq/parley/pkg/slogx"
)

type UsersHandler struct {
	Auth          *service.AuthService
	Users         *service.UserService
	GuestSentinel string
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// decodeCredentials accepts both form-encoded bodies (the login form, which
// the rate limiter also reads) and JSON.
func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req credentialsRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return credentialsRequest{}, err
	}
	return credentialsRequest{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}, nil
}

func (h *UsersHandler) setSessionCookies(w http.ResponseWriter, pair domain.TokenPair) {
	httpx.SetTokenCookies(w, pair.AccessToken, pair.RefreshToken, h.Auth.AccessTTL, h.Auth.RefreshTTL)
}

// HandleRegister creates an account and logs it straight in.
//
//	@Summary		Register a new user
//	@Description	Creates an account if the username is free and the password passes the
//	@Description	policy (at least 8 characters with upper- and lower-case letters, a digit
//	@Description	and a special character), then returns a logged-in token pair.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		credentialsRequest	true	"username and password"
//	@Success		201			{object}	domain.TokenPair
//	@Failure		400			{object}	map[string]string	"weak password or taken username"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, pair, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user registered", "username", user.Username)

	h.setSessionCookies(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, pair)
}

// HandleLogin exchanges a username/password pair for tokens.
//
//	@Summary	Log in
//	@Tags		Users
//	@Accept		x-www-form-urlencoded
//	@Produce	json
//	@Param		username	formData	string	true	"username"
//	@Param		password	formData	string	true	"password"
//	@Success	200			{object}	domain.TokenPair
//	@Failure	401			{object}	map[string]string	"incorrect username or password"
//	@Router		/v1/users/login [post].
func (h *UsersHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	pair, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleGuest starts an anonymous browsing session by setting the guest
// sentinel in place of an access token.
//
//	@Summary	Browse as guest
//	@Tags		Users
//	@Success	204
//	@Router		/v1/users/guest [post].
func (h *UsersHandler) HandleGuest(w http.ResponseWriter, r *http.Request) {
	httpx.SetGuestCookie(w, h.GuestSentinel, h.Auth.AccessTTL)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh exchanges a bound token pair for a fresh one. The access
// token may be expired; the refresh token must be valid and must have been
// issued with exactly the presented access token.
//
// The session gate redirects stale sessions here with a "next" parameter;
// in that case the response is a redirect back to the original destination
// with the fresh cookies set.
//
//	@Summary	Refresh the token pair
//	@Tags		Users
//	@Produce	json
//	@Param		Access-Token	header		string	false	"current access token (also read from cookie or query)"
//	@Param		Refresh-Token	header		string	false	"current refresh token (also read from cookie or query)"
//	@Param		next			query		string	false	"destination to redirect to after a successful refresh"
//	@Success	200				{object}	domain.TokenPair
//	@Success	303				"redirect to next"
//	@Failure	401				{object}	map[string]string	"could not validate credentials"
//	@Router		/v1/users/token/refresh [get].
func (h *UsersHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	access := httpx.AccessTokenFromRequest(r)
	refresh := httpx.RefreshTokenFromRequest(r)

	pair, err := h.Auth.Refresh(r.Context(), access, refresh)
	if err != nil {
		// The session is beyond saving. Downgrade to guest so the gate
		// stops bouncing the client back here.
		httpx.SetGuestCookie(w, h.GuestSentinel, h.Auth.AccessTTL)
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	httpx.NoCache(w)

	if next := r.URL.Query().Get("next"); next != "" && strings.HasPrefix(next, "/") {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

type setAdminRequest struct {
	Username string `json:"username"`
}

// HandleSetAdmin promotes a user to admin. Admin-only.
//
//	@Summary	Grant admin privileges
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		target	body	setAdminRequest	true	"username to promote"
//	@Success	200
//	@Failure	400	{object}	map[string]string	"the username provided does not exist"
//	@Failure	403	{object}	map[string]string
//	@Router		/v1/users/admin [put].
func (h *UsersHandler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req setAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.Users.SetAdmin(r.Context(), actor, req.Username); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("admin granted", "username", req.Username, "by", actor.Username)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "admin privileges granted"})
}
