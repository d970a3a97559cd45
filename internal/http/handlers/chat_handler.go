// Chat HTTP handler.
//
// This file exposes the single public endpoint of the assistant:
//   - POST /chat    (generate an assistant reply for a widget transcript)
//
// The handler is transport-thin: it validates the payload, calls the chat
// service, and translates the result into HTTP. The one unusual convention is
// the failure posture: only a malformed request body yields an error status.
// Any internal failure (unknown store, upstream outage, invalid context)
// degrades to HTTP 200 with the canned fallback reply, because the storefront
// widget renders whatever it receives as an assistant message and must never
// show an error state to the shopper.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bighackai/commerce-chat-backend/internal/domain"
	"github.com/bighackai/commerce-chat-backend/internal/genai"
	"github.com/bighackai/commerce-chat-backend/internal/http/middleware"
)

//
// Service contracts (context-aware)
//

// ChatService defines the reply operation consumed by the HTTP handler.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChatService interface {
	// Reply produces an assistant reply for the transcript, optionally
	// grounded in the page the shopper is viewing.
	Reply(ctx context.Context, pageURL *string, messages []domain.ChatMessage) (string, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the assistant. It depends on an
// abstract service interface to keep transport concerns separate from the
// reply pipeline.
type Handlers struct {
	chatSvc ChatService
}

// New constructs and returns a Handlers instance bound to the given service.
func New(chatSvc ChatService) *Handlers {
	return &Handlers{chatSvc: chatSvc}
}

//
// DTOs
//

// ChatRequest is the JSON payload sent by the storefront widget.
type ChatRequest struct {
	// URL is the page the shopper is currently viewing; absent for
	// conversations started outside a storefront page.
	URL *string `json:"url"`
	// Chat is the raw transcript, oldest first. Speaker attribution is by
	// display name; the assistant's own messages carry the sentinel name.
	// The field name is part of the wire contract with the deployed widget.
	// The list must be present but may be empty; an empty transcript is not a
	// client error, it degrades to the fallback reply downstream.
	Chat []domain.ChatMessage `json:"chat" binding:"required"`
}

// ChatResponse carries the assistant reply. The field name is part of the
// wire contract with the deployed widget.
type ChatResponse struct {
	Replay string `json:"replay" example:"We ship worldwide within 3-5 business days."`
}

//
// Handlers
//

// PostChat generates an assistant reply for the submitted transcript.
//
// Responses:
//   - 200 with the reply (or the canned fallback when the pipeline degraded)
//   - 400 only when the request body is malformed
func (h *Handlers) PostChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	reply, err := h.chatSvc.Reply(c.Request.Context(), req.URL, req.Chat)
	if err != nil {
		// Degrade, never error: the widget shows this as a normal reply.
		middleware.LoggerFrom(c).Warn().
			Err(err).
			Msg("reply pipeline degraded to fallback")
		middleware.ObserveReply("fallback")
		ok(c, http.StatusOK, ChatResponse{Replay: genai.FallbackReply})
		return
	}

	outcome := "ok"
	if reply == genai.FallbackReply {
		outcome = "fallback"
	}
	middleware.ObserveReply(outcome)
	ok(c, http.StatusOK, ChatResponse{Replay: reply})
}
