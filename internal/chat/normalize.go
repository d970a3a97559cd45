// Package chat turns raw UI chat traffic into model-ready dialogue: it
// coalesces consecutive same-speaker messages into single turns and assembles
// the persona-constrained grounding prompt from resolved commerce context.
package chat

import (
	"github.com/bighackai/commerce-chat-backend/internal/domain"
)

// AssistantName is the sentinel speaker name the chat UI uses for the
// assistant's own messages. Every other speaker name maps to the user role.
const AssistantName = "AI-Salesman"

// turnSeparator joins the texts of merged same-speaker messages.
const turnSeparator = " - "

// Coalesce merges runs of consecutive same-speaker messages into single
// dialogue turns, preserving order. The model's dialogue format expects
// strictly alternating roles, so a burst of UI messages from one speaker has
// to become one logical turn before invocation.
//
// Single forward pass, O(n). Empty input yields an empty (non-nil) slice, and
// input with no two consecutive equal speaker names maps 1:1.
func Coalesce(messages []domain.ChatMessage) []domain.ChatTurn {
	turns := make([]domain.ChatTurn, 0, len(messages))

	i := 0
	for i < len(messages) {
		name := messages[i].Name
		content := messages[i].Message
		i++
		for i < len(messages) && messages[i].Name == name {
			content += turnSeparator + messages[i].Message
			i++
		}
		turns = append(turns, domain.ChatTurn{
			Role:    roleFor(name),
			Content: content,
		})
	}
	return turns
}

// roleFor maps a speaker name to a dialogue role. Only the assistant sentinel
// maps to the assistant role.
func roleFor(name string) string {
	if name == AssistantName {
		return domain.RoleAssistant
	}
	return domain.RoleUser
}
