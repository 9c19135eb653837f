package http

import (
	"encoding/json"
	"net/http"

	"github.com/parleyhq/parley/internal/forum/service"
	"github.com/parleyhq/parley/pkg/httpx"
)

type CategoriesHandler struct {
	Auth       *service.AuthService
	Categories *service.CategoryService
}

// HandleList lists the categories visible to the caller.
//
//	@Summary	List categories
//	@Tags		Categories
//	@Produce	json
//	@Param		name	query	string	false	"filter by name substring"
//	@Param		page	query	int		false	"1-based page"
//	@Param		limit	query	int		false	"page size"
//	@Success	200		{array}	domain.Category
//	@Router		/v1/categories [get].
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer := optionalIdentity(r, h.Auth)

	categories, err := h.Categories.List(r.Context(), viewer, r.URL.Query().Get("name"), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, categories)
}

// HandleTopics lists a category's topics.
//
//	@Summary	List topics in a category
//	@Tags		Categories
//	@Produce	json
//	@Param		id		path	string	true	"category id"
//	@Param		title	query	string	false	"filter by title substring"
//	@Param		sort	query	string	false	"asc or desc by creation time"
//	@Success	200		{array}	domain.Topic
//	@Failure	403		{object}	map[string]string	"no access to a private category"
//	@Failure	404		{object}	map[string]string
//	@Router		/v1/categories/{id}/topics [get].
func (h *CategoriesHandler) HandleTopics(w http.ResponseWriter, r *http.Request) {
	viewer := optionalIdentity(r, h.Auth)

	topics, err := h.Categories.TopicsByCategory(r.Context(), viewer, r.PathValue("id"),
		r.URL.Query().Get("title"), sortFromQuery(r), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, topics)
}

type createCategoryRequest struct {
	Name          string `json:"name"`
	PrivacyStatus string `json:"privacy_status"`
}

// HandleCreate adds a category. Admin-only.
//
//	@Summary	Create a category
//	@Tags		Categories
//	@Accept		json
//	@Produce	json
//	@Param		category	body		createCategoryRequest	true	"name and optional privacy status"
//	@Success	201			{object}	domain.Category
//	@Failure	403			{object}	map[string]string
//	@Router		/v1/categories [post].
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	category, err := h.Categories.Create(r.Context(), actor, req.Name, req.PrivacyStatus)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, category)
}

type setPrivacyRequest struct {
	PrivacyStatus string `json:"privacy_status"`
}

// HandleSetPrivacy changes a category's privacy status. Admin-only.
//
//	@Summary	Change category privacy
//	@Tags		Categories
//	@Accept		json
//	@Param		id		path	string				true	"category id"
//	@Param		privacy	body	setPrivacyRequest	true	"private or non_private"
//	@Success	200
//	@Router		/v1/categories/{id}/privacy [put].
func (h *CategoriesHandler) HandleSetPrivacy(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req setPrivacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.Categories.SetPrivacy(r.Context(), actor, r.PathValue("id"), req.PrivacyStatus); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "privacy status updated"})
}

// HandleLock closes a category for new topics. Admin-only.
//
//	@Summary	Lock a category
//	@Tags		Categories
//	@Param		id	path	string	true	"category id"
//	@Success	200
//	@Router		/v1/categories/{id}/lock [put].
func (h *CategoriesHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Categories.Lock(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "category locked"})
}

type grantAccessRequest struct {
	Username    string `json:"username"`
	WriteAccess bool   `json:"write_access"`
}

// HandleGrantAccess grants a user access to a private category. Admin-only.
//
//	@Summary	Grant category access
//	@Tags		Categories
//	@Accept		json
//	@Param		id		path	string				true	"category id"
//	@Param		grant	body	grantAccessRequest	true	"username and access level"
//	@Success	200
//	@Router		/v1/categories/{id}/access [post].
func (h *CategoriesHandler) HandleGrantAccess(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req grantAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.Categories.GrantAccess(r.Context(), actor, r.PathValue("id"), req.Username, req.WriteAccess); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "access granted"})
}

// HandleRevokeAccess removes a user's grant. Admin-only.
//
//	@Summary	Revoke category access
//	@Tags		Categories
//	@Param		id			path	string	true	"category id"
//	@Param		username	path	string	true	"user to revoke"
//	@Success	204
//	@Router		/v1/categories/{id}/access/{username} [delete].
func (h *CategoriesHandler) HandleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Categories.RevokeAccess(r.Context(), actor, r.PathValue("id"), r.PathValue("username")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandlePrivilegedUsers lists the grants on a private category. Admin-only.
//
//	@Summary	List privileged users
//	@Tags		Categories
//	@Produce	json
//	@Param		id	path	string	true	"category id"
//	@Success	200	{array}	domain.PrivilegedUser
//	@Router		/v1/categories/{id}/privileged [get].
func (h *CategoriesHandler) HandlePrivilegedUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	users, err := h.Categories.PrivilegedUsers(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, users)
}
