package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/parleyhq/parley/internal/forum/service"
	"github.com/parleyhq/parley/pkg/httpx"
)

type MessagesHandler struct {
	Auth     *service.AuthService
	Messages *service.MessageService
}

type sendMessageRequest struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
	ParentID   string   `json:"id_parent_message"`
}

// HandleSend delivers a message to one or more recipients.
//
//	@Summary	Send a message
//	@Tags		Messages
//	@Accept		json
//	@Produce	json
//	@Param		message	body		sendMessageRequest	true	"recipients and content"
//	@Success	201		{object}	domain.Message
//	@Failure	400		{object}	map[string]string	"unknown recipient or empty content"
//	@Router		/v1/messages [post].
func (h *MessagesHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	msg, err := h.Messages.Send(r.Context(), actor, req.Recipients, req.Subject, req.Content, req.ParentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, msg)
}

// HandleConversations lists the caller's conversations grouped by
// counterparty.
//
//	@Summary	List conversations
//	@Tags		Messages
//	@Produce	json
//	@Param		sort	query		string	false	"asc or desc by send time"
//	@Param		page	query		int		false	"1-based page number"
//	@Param		limit	query		int		false	"page size"
//	@Success	200		{array}		service.ConversationThread
//	@Failure	401		{object}	map[string]string
//	@Router		/v1/messages [get].
func (h *MessagesHandler) HandleConversations(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	threads, err := h.Messages.Conversations(r.Context(), actor, sortFromQuery(r), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, threads)
}

// HandleConversationsWith returns the caller's exchanges with the named
// users, split into per-subject threads.
//
//	@Summary	Show conversations with specific users
//	@Tags		Messages
//	@Produce	json
//	@Param		user	query		[]string	true	"counterparty username, repeatable"
//	@Success	200		{array}		service.SubjectThread
//	@Failure	400		{object}	map[string]string	"unknown username"
//	@Router		/v1/messages/with [get].
func (h *MessagesHandler) HandleConversationsWith(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	usernames := r.URL.Query()["user"]
	if len(usernames) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "at least one user query parameter is required")
		return
	}

	threads, err := h.Messages.ConversationsWith(r.Context(), actor, usernames)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, threads)
}

// HandleChat returns the messages received after a given instant, oldest
// first. Polling feed for chat-style clients.
//
//	@Summary	Poll for new messages
//	@Tags		Messages
//	@Produce	json
//	@Param		since	query		string	true	"RFC 3339 timestamp"
//	@Success	200		{array}		domain.ConversationMessage
//	@Failure	400		{object}	map[string]string	"missing or malformed since"
//	@Router		/v1/messages/chat [get].
func (h *MessagesHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	actor, err := requireIdentity(r, h.Auth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	since, err := time.Parse(time.RFC3339, r.URL.Query().Get("since"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
		return
	}

	messages, err := h.Messages.ChatSince(r.Context(), actor, since)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messages)
}
