package http

import (
	"encoding/json"
	"net/http"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/service"
	"github.com/parleyhq/parley/pkg/httpx"
)

type RepliesHandler struct {
	Auth    *service.AuthService
	Replies *service.ReplyService
}

type createReplyRequest struct {
	TopicID string `json:"topic_id"`
	Content string `json:"content"`
}

// HandleCreate posts a reply to a topic.
//
//	@Summary	Create a reply
//	@Tags		Replies
//	@Accept		json
//	@Produce	json
//	@Param		reply	body		createReplyRequest	true	"topic and content"
//	@Success	201		{object}	domain.Reply
//	@Failure	403		{object}	map[string]string	"no write access to the category"
//	@Failure	406		{object}	map[string]string	"topic is locked"
//	@Router		/v1/replies [post].
func (h *RepliesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req createReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	reply, err := h.Replies.Create(r.Context(), actor, req.TopicID, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, reply)
}

type editReplyRequest struct {
	Content string `json:"content"`
}

// HandleEdit rewrites a reply's content. Author-only.
//
//	@Summary	Edit a reply
//	@Tags		Replies
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"reply id"
//	@Param		changes	body		editReplyRequest	true	"new content"
//	@Success	200		{object}	domain.Reply
//	@Failure	403		{object}	map[string]string
//	@Router		/v1/replies/{id} [patch].
func (h *RepliesHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req editReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	reply, err := h.Replies.Edit(r.Context(), actor, r.PathValue("id"), req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, reply)
}

type chooseBestRequest struct {
	TopicID string `json:"topic_id"`
	ReplyID string `json:"reply_id"`
}

// HandleChooseBest marks a reply as the topic's best answer. Topic author
// only, once per topic.
//
//	@Summary	Choose the best reply
//	@Tags		Replies
//	@Accept		json
//	@Produce	json
//	@Param		choice	body		chooseBestRequest	true	"topic and reply"
//	@Success	200		{object}	domain.Reply
//	@Failure	403		{object}	map[string]string	"not the topic author"
//	@Failure	406		{object}	map[string]string	"topic already has a best reply"
//	@Router		/v1/replies/best [post].
func (h *RepliesHandler) HandleChooseBest(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req chooseBestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	reply, err := h.Replies.ChooseBest(r.Context(), actor, req.TopicID, req.ReplyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, reply)
}

type voteRequest struct {
	ReplyID string `json:"reply_id"`
	Vote    int    `json:"vote"`
}

// HandleVote casts, changes or removes a vote on a reply and returns the
// reply with fresh tallies.
//
//	@Summary	Vote on a reply
//	@Tags		Replies
//	@Accept		json
//	@Produce	json
//	@Param		vote	body		voteRequest	true	"reply id and vote: 1 up, -1 down, 0 remove"
//	@Success	202		{object}	domain.Reply
//	@Failure	404		{object}	map[string]string
//	@Router		/v1/replies/vote [post].
func (h *RepliesHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	reply, err := h.Replies.Vote(r.Context(), actor, req.ReplyID, domain.Vote(req.Vote))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, reply)
}
