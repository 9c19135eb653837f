package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/parleyhq/parley/internal/forum/service"
	"github.com/parleyhq/parley/pkg/httpx"
)

type TopicsHandler struct {
	Auth   *service.AuthService
	Topics *service.TopicService
}

// HandleSearch lists topics visible to the caller, optionally filtered by
// search terms.
//
//	@Summary	Search topics
//	@Tags		Topics
//	@Produce	json
//	@Param		search			query		string	false	"space-separated search terms (stop words are ignored)"
//	@Param		include_replies	query		bool	false	"attach replies to each topic"
//	@Param		sort			query		string	false	"asc or desc by creation time"
//	@Success	200				{object}	service.SearchResult
//	@Router		/v1/topics [get].
func (h *TopicsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	viewer := optionalIdentity(r, h.Auth)

	includeReplies, _ := strconv.ParseBool(r.URL.Query().Get("include_replies"))

	result, err := h.Topics.Search(r.Context(), viewer, service.SearchOptions{
		Query:          r.URL.Query().Get("search"),
		IncludeReplies: includeReplies,
		Sort:           sortFromQuery(r),
		Page:           pageFromQuery(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleCount returns the number of topics in a category. Pagination helper
// for forum clients.
//
//	@Summary	Count topics in a category
//	@Tags		Topics
//	@Produce	json
//	@Param		categoryID	path		string	true	"category id"
//	@Success	200			{object}	map[string]int
//	@Router		/v1/topics/count/{categoryID} [get].
func (h *TopicsHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Topics.Count(r.Context(), r.PathValue("categoryID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

// HandleGet returns one topic with its replies and their vote tallies.
//
//	@Summary	Get a topic
//	@Tags		Topics
//	@Produce	json
//	@Param		id	path		string	true	"topic id"
//	@Success	200	{object}	domain.TopicView
//	@Failure	404	{object}	map[string]string
//	@Router		/v1/topics/{id} [get].
func (h *TopicsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewer := optionalIdentity(r, h.Auth)

	topic, err := h.Topics.Get(r.Context(), viewer, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, topic)
}

type createTopicRequest struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	CategoryID string `json:"category_id"`
}

// HandleCreate posts a new topic.
//
//	@Summary	Create a topic
//	@Tags		Topics
//	@Accept		json
//	@Produce	json
//	@Param		topic	body		createTopicRequest	true	"title, text and category"
//	@Success	201		{object}	domain.Topic
//	@Failure	403		{object}	map[string]string	"no write access to the category"
//	@Failure	406		{object}	map[string]string	"category is locked"
//	@Router		/v1/topics [post].
func (h *TopicsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	topic, err := h.Topics.Create(r.Context(), actor, req.Title, req.Text, req.CategoryID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, topic)
}

type editTopicRequest struct {
	NewTitle string `json:"new_title"`
	NewText  string `json:"new_text"`
}

// HandleEdit rewrites a topic's title and/or text. Author or admin.
//
//	@Summary	Edit a topic
//	@Tags		Topics
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"topic id"
//	@Param		changes	body		editTopicRequest	true	"new title and/or text; empty fields keep the old value"
//	@Success	200		{object}	domain.Topic
//	@Failure	403		{object}	map[string]string
//	@Failure	406		{object}	map[string]string	"topic is locked"
//	@Router		/v1/topics/{id} [patch].
func (h *TopicsHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req editTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	topic, err := h.Topics.Edit(r.Context(), actor, r.PathValue("id"), req.NewTitle, req.NewText)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, topic)
}

// HandleLock closes a topic for new replies. Admin-only. Locking an
// already-locked topic answers 208 Already Reported.
//
//	@Summary	Lock a topic
//	@Tags		Topics
//	@Param		id	path	string	true	"topic id"
//	@Success	200
//	@Success	208	"already locked"
//	@Failure	403	{object}	map[string]string
//	@Router		/v1/topics/{id}/lock [put].
func (h *TopicsHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	alreadyLocked, err := h.Topics.Lock(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if alreadyLocked {
		httpx.WriteJSON(w, http.StatusAlreadyReported, map[string]string{"detail": "topic already locked"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "topic locked"})
}
