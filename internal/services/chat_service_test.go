package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bighackai/commerce-chat-backend/internal/chat"
	"github.com/bighackai/commerce-chat-backend/internal/domain"
	"github.com/bighackai/commerce-chat-backend/internal/genai"
	"github.com/bighackai/commerce-chat-backend/internal/repo"
)

type fakeDirectory struct {
	store  *domain.Store
	err    error
	gotURL string
	calls  int
}

func (d *fakeDirectory) StoreByURL(ctx context.Context, storeURL string) (*domain.Store, error) {
	d.calls++
	d.gotURL = storeURL
	if d.err != nil {
		return nil, d.err
	}
	return d.store, nil
}

type fakeResolver struct {
	ctx      domain.ChatContext
	err      error
	gotStore domain.Store
	gotPath  string
	calls    int
}

func (r *fakeResolver) Resolve(ctx context.Context, store domain.Store, pagePath string) (domain.ChatContext, error) {
	r.calls++
	r.gotStore = store
	r.gotPath = pagePath
	return r.ctx, r.err
}

type fakeModel struct {
	reply        string
	gotGrounding string
	gotTurns     []domain.ChatTurn
	calls        int
}

func (m *fakeModel) Reply(ctx context.Context, grounding string, turns []domain.ChatTurn) string {
	m.calls++
	m.gotGrounding = grounding
	m.gotTurns = turns
	if m.reply == "" {
		return genai.FallbackReply
	}
	return m.reply
}

func transcript() []domain.ChatMessage {
	return []domain.ChatMessage{
		{Name: chat.AssistantName, Message: "Hi, how can I help?"},
		{Name: "Maria", Message: "Do you ship"},
		{Name: "Maria", Message: "to Greece?"},
	}
}

func TestReply_NoPageURL(t *testing.T) {
	dir := &fakeDirectory{}
	res := &fakeResolver{}
	model := &fakeModel{reply: "We ship worldwide."}
	s := NewChatService(dir, res, model)

	got, err := s.Reply(context.Background(), nil, transcript())
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "We ship worldwide." {
		t.Errorf("reply = %q", got)
	}
	if dir.calls != 0 || res.calls != 0 {
		t.Errorf("directory/resolver invoked without a page URL: %d/%d", dir.calls, res.calls)
	}
	if model.calls != 1 {
		t.Fatalf("model calls = %d; want 1", model.calls)
	}
	// Consecutive same-speaker messages coalesce into one turn.
	if len(model.gotTurns) != 2 {
		t.Fatalf("turns = %d; want 2", len(model.gotTurns))
	}
	if model.gotTurns[1].Content != "Do you ship - to Greece?" {
		t.Errorf("coalesced turn = %q", model.gotTurns[1].Content)
	}
}

func TestReply_BlankPageURLIsContextless(t *testing.T) {
	dir := &fakeDirectory{}
	res := &fakeResolver{}
	model := &fakeModel{reply: "ok"}
	s := NewChatService(dir, res, model)

	blank := "   "
	if _, err := s.Reply(context.Background(), &blank, transcript()); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if dir.calls != 0 {
		t.Errorf("directory invoked for blank URL")
	}
}

func TestReply_ProductPage(t *testing.T) {
	store := &domain.Store{StoreHash: "abc123", AccessToken: "tok", StoreURL: "store.example"}
	dir := &fakeDirectory{store: store}
	res := &fakeResolver{ctx: domain.ChatContext{
		Kind: domain.ContextCurrentProduct,
		CurrentProduct: &domain.MinimalProduct{
			ID: 42, Name: "Blue Mug", Description: "Ceramic", AddToCartURL: "/cart.php?action=add&product_id=42",
		},
	}}
	model := &fakeModel{reply: "It is a lovely mug."}
	s := NewChatService(dir, res, model)

	pageURL := "https://store.example/blue-mug/?sku=7"
	got, err := s.Reply(context.Background(), &pageURL, transcript())
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "It is a lovely mug." {
		t.Errorf("reply = %q", got)
	}
	if dir.gotURL != "store.example" {
		t.Errorf("directory queried with %q; want hostname only", dir.gotURL)
	}
	if res.gotPath != "/blue-mug/" {
		t.Errorf("resolver path = %q", res.gotPath)
	}
	if res.gotStore.StoreHash != "abc123" {
		t.Errorf("resolver store = %+v", res.gotStore)
	}
	if !strings.Contains(model.gotGrounding, "Blue Mug") {
		t.Errorf("grounding prompt missing product name:\n%s", model.gotGrounding)
	}
}

func TestReply_EmptyTranscript(t *testing.T) {
	s := NewChatService(&fakeDirectory{}, &fakeResolver{}, &fakeModel{})
	if _, err := s.Reply(context.Background(), nil, nil); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("err = %v; want ErrNoMessages", err)
	}
}

func TestReply_UnknownStore(t *testing.T) {
	dir := &fakeDirectory{err: repo.ErrNotFound}
	model := &fakeModel{}
	s := NewChatService(dir, &fakeResolver{}, model)

	pageURL := "https://unknown.example/some-page"
	if _, err := s.Reply(context.Background(), &pageURL, transcript()); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("err = %v; want ErrStoreNotFound", err)
	}
	if model.calls != 0 {
		t.Errorf("model invoked despite failed store lookup")
	}
}

func TestReply_ResolverErrorPropagates(t *testing.T) {
	sentinel := errors.New("upstream down")
	dir := &fakeDirectory{store: &domain.Store{StoreHash: "abc123", StoreURL: "store.example"}}
	res := &fakeResolver{err: sentinel}
	model := &fakeModel{}
	s := NewChatService(dir, res, model)

	pageURL := "https://store.example/blue-mug"
	if _, err := s.Reply(context.Background(), &pageURL, transcript()); !errors.Is(err, sentinel) {
		t.Fatalf("err = %v; want wrapped sentinel", err)
	}
	if model.calls != 0 {
		t.Errorf("model invoked despite resolver failure")
	}
}

func TestReply_InvalidContextGatesModel(t *testing.T) {
	dir := &fakeDirectory{store: &domain.Store{StoreHash: "abc123", StoreURL: "store.example"}}
	// A resolver bug that sets both variants must be a hard failure.
	res := &fakeResolver{ctx: domain.ChatContext{
		Kind:           domain.ContextCurrentProduct,
		CurrentProduct: &domain.MinimalProduct{ID: 1, Name: "X"},
		StoreProducts:  &domain.StoreProducts{},
	}}
	model := &fakeModel{}
	s := NewChatService(dir, res, model)

	pageURL := "https://store.example/p"
	if _, err := s.Reply(context.Background(), &pageURL, transcript()); !errors.Is(err, domain.ErrInvalidContext) {
		t.Fatalf("err = %v; want ErrInvalidContext", err)
	}
	if model.calls != 0 {
		t.Errorf("model invoked with invalid context")
	}
}

func TestReply_URLWithoutHostname(t *testing.T) {
	s := NewChatService(&fakeDirectory{}, &fakeResolver{}, &fakeModel{})
	pageURL := "/relative/path"
	if _, err := s.Reply(context.Background(), &pageURL, transcript()); err == nil {
		t.Fatal("expected error for URL without hostname")
	}
}
