package chat

import (
	"reflect"
	"testing"

	"github.com/bighackai/commerce-chat-backend/internal/domain"
)

func TestCoalesce_MergesConsecutiveSameSpeaker(t *testing.T) {
	in := []domain.ChatMessage{
		{Name: "user1", Message: "hi"},
		{Name: "user1", Message: "there"},
		{Name: "user2", Message: "hey"},
	}
	want := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: "hi - there"},
		{Role: domain.RoleUser, Content: "hey"},
	}
	got := Coalesce(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Coalesce = %+v; want %+v", got, want)
	}
}

func TestCoalesce_IdempotentOnAlternatingInput(t *testing.T) {
	in := []domain.ChatMessage{
		{Name: "visitor", Message: "is this waterproof?"},
		{Name: AssistantName, Message: "It sure is!"},
		{Name: "visitor", Message: "great, add it"},
	}
	got := Coalesce(in)
	if len(got) != len(in) {
		t.Fatalf("alternating input changed length: got %d turns from %d messages", len(got), len(in))
	}
	for i, turn := range got {
		if turn.Content != in[i].Message {
			t.Errorf("turn %d content = %q; want %q", i, turn.Content, in[i].Message)
		}
	}
}

func TestCoalesce_RoleMapping(t *testing.T) {
	in := []domain.ChatMessage{
		{Name: AssistantName, Message: "welcome"},
		{Name: "alice", Message: "hello"},
		{Name: "bob", Message: "hi"},
	}
	got := Coalesce(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(got))
	}
	if got[0].Role != domain.RoleAssistant {
		t.Errorf("sentinel speaker mapped to %q; want assistant", got[0].Role)
	}
	if got[1].Role != domain.RoleUser || got[2].Role != domain.RoleUser {
		t.Errorf("non-sentinel speakers must map to user, got %q and %q", got[1].Role, got[2].Role)
	}
}

func TestCoalesce_EmptyInput(t *testing.T) {
	got := Coalesce(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("Coalesce(nil) = %#v; want empty slice", got)
	}
}

func TestCoalesce_LongRunCollapsesToOneTurn(t *testing.T) {
	in := []domain.ChatMessage{
		{Name: "u", Message: "a"},
		{Name: "u", Message: "b"},
		{Name: "u", Message: "c"},
		{Name: "u", Message: "d"},
	}
	got := Coalesce(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(got))
	}
	if got[0].Content != "a - b - c - d" {
		t.Errorf("content = %q; want %q", got[0].Content, "a - b - c - d")
	}
}
