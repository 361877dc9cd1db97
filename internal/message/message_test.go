package message

import (
	"errors"
	"strings"
	"testing"

	"prompterd/internal/settings"
)

func testBuilder() *Builder {
	return NewBuilder(settings.Default())
}

// ---------------------------------------------------------------------------
// Single-turn prompt resolution
// ---------------------------------------------------------------------------

func TestResolvePromptSubstitutesInput(t *testing.T) {
	b := testBuilder()
	prompt := settings.Prompt{
		ID: "fix",
		Messages: []settings.Message{
			{Role: "system", Content: "You fix grammar."},
			{Role: "user", Content: "Fix this:\n{{clipboard}}"},
		},
	}

	msgs, err := b.ResolvePrompt(prompt, "teh quick fox")
	if err != nil {
		t.Fatalf("ResolvePrompt failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "You fix grammar." {
		t.Fatalf("unexpected system message: %+v", msgs[0])
	}
	if msgs[1].Content != "Fix this:\nteh quick fox" {
		t.Fatalf("placeholder not substituted: %q", msgs[1].Content)
	}
}

func TestResolvePromptContextAlias(t *testing.T) {
	b := testBuilder()
	prompt := settings.Prompt{
		ID:       "p",
		Messages: []settings.Message{{Role: "user", Content: "{{context}}"}},
	}

	msgs, err := b.ResolvePrompt(prompt, "payload")
	if err != nil {
		t.Fatalf("ResolvePrompt failed: %v", err)
	}
	if msgs[0].Content != "payload" {
		t.Fatalf("context placeholder = %q, want %q", msgs[0].Content, "payload")
	}
}

func TestResolvePromptDropsEmptyMessages(t *testing.T) {
	b := testBuilder()
	prompt := settings.Prompt{
		ID: "p",
		Messages: []settings.Message{
			{Role: "system", Content: "Summarize."},
			{Role: "user", Content: "{{clipboard}}"},
		},
	}

	msgs, err := b.ResolvePrompt(prompt, "   ")
	if err != nil {
		t.Fatalf("ResolvePrompt failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != "system" {
		t.Fatalf("expected only the system message to survive, got %+v", msgs)
	}
}

func TestResolvePromptAllEmptyIsError(t *testing.T) {
	b := testBuilder()
	prompt := settings.Prompt{
		ID:       "p",
		Messages: []settings.Message{{Role: "user", Content: "{{clipboard}}"}},
	}

	_, err := b.ResolvePrompt(prompt, "")
	if !errors.Is(err, ErrNoMessages) {
		t.Fatalf("expected ErrNoMessages, got %v", err)
	}
}

func TestResolvePromptDefaultsRoleToUser(t *testing.T) {
	b := testBuilder()
	prompt := settings.Prompt{
		ID:       "p",
		Messages: []settings.Message{{Content: "hello"}},
	}

	msgs, err := b.ResolvePrompt(prompt, "")
	if err != nil {
		t.Fatalf("ResolvePrompt failed: %v", err)
	}
	if msgs[0].Role != "user" {
		t.Fatalf("role = %q, want user", msgs[0].Role)
	}
}

func TestRegisterCustomPlaceholder(t *testing.T) {
	b := testBuilder()
	b.Register("upper", func(input string) string { return strings.ToUpper(input) })

	prompt := settings.Prompt{
		ID:       "p",
		Messages: []settings.Message{{Role: "user", Content: "{{upper}}"}},
	}
	msgs, err := b.ResolvePrompt(prompt, "loud")
	if err != nil {
		t.Fatalf("ResolvePrompt failed: %v", err)
	}
	if msgs[0].Content != "LOUD" {
		t.Fatalf("custom placeholder = %q, want LOUD", msgs[0].Content)
	}

	found := false
	for _, name := range b.Placeholders() {
		if name == "upper" {
			found = true
		}
	}
	if !found {
		t.Fatal("Placeholders() should list the registered name")
	}
}

// ---------------------------------------------------------------------------
// Conversation resolution
// ---------------------------------------------------------------------------

func convPrompt() settings.Prompt {
	return settings.Prompt{
		ID: "chat",
		Messages: []settings.Message{
			{Role: "system", Content: "Be helpful."},
			{Role: "user", Content: "{{clipboard}}"}, // ignored for conversations
		},
	}
}

func TestResolveConversationPreservesTurnOrder(t *testing.T) {
	b := testBuilder()
	conv := &Conversation{
		Turns: []Turn{
			{Role: "user", Text: "first question"},
			{Role: "assistant", Text: "first answer"},
			{Role: "user", Text: "second question"},
		},
	}

	msgs, err := b.ResolveConversation(convPrompt(), conv)
	if err != nil {
		t.Fatalf("ResolveConversation failed: %v", err)
	}

	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(msgs) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(msgs))
	}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Fatalf("message %d role = %q, want %q", i, msgs[i].Role, role)
		}
	}
	if msgs[3].Content != "second question" {
		t.Fatalf("later turns must pass through verbatim, got %q", msgs[3].Content)
	}
}

func TestResolveConversationWrapsContextIntoFirstUserTurn(t *testing.T) {
	b := testBuilder()
	conv := &Conversation{
		ContextText: "the selected text",
		Turns: []Turn{
			{Role: "user", Text: "explain this"},
			{Role: "user", Text: "shorter"},
		},
	}

	msgs, err := b.ResolveConversation(convPrompt(), conv)
	if err != nil {
		t.Fatalf("ResolveConversation failed: %v", err)
	}

	first := msgs[1]
	if !strings.HasPrefix(first.Content, "<context>\nthe selected text\n</context>\n\n") {
		t.Fatalf("first user turn missing context block: %q", first.Content)
	}
	if !strings.HasSuffix(first.Content, "explain this") {
		t.Fatalf("first user turn lost its own text: %q", first.Content)
	}
	if msgs[2].Content != "shorter" {
		t.Fatalf("only the first user turn gets the context, got %q", msgs[2].Content)
	}
}

func TestResolveConversationPrependsContextImages(t *testing.T) {
	b := testBuilder()
	ctxImg := Image{MediaType: "image/png", Data: "Y3R4"}
	turnImg := Image{MediaType: "image/jpeg", Data: "dHVybg=="}
	conv := &Conversation{
		ContextImages: []Image{ctxImg},
		Turns: []Turn{
			{Role: "user", Text: "what is in these?", Images: []Image{turnImg}},
		},
	}

	msgs, err := b.ResolveConversation(convPrompt(), conv)
	if err != nil {
		t.Fatalf("ResolveConversation failed: %v", err)
	}
	imgs := msgs[1].Images
	if len(imgs) != 2 || imgs[0] != ctxImg || imgs[1] != turnImg {
		t.Fatalf("context images must come first, got %+v", imgs)
	}
}

func TestResolveConversationSystemGetsContextPlaceholder(t *testing.T) {
	b := testBuilder()
	prompt := settings.Prompt{
		ID: "chat",
		Messages: []settings.Message{
			{Role: "system", Content: "Working on: {{context}}"},
		},
	}
	conv := &Conversation{
		ContextText: "main.go",
		Turns:       []Turn{{Role: "user", Text: "hi"}},
	}

	msgs, err := b.ResolveConversation(prompt, conv)
	if err != nil {
		t.Fatalf("ResolveConversation failed: %v", err)
	}
	if msgs[0].Content != "Working on: main.go" {
		t.Fatalf("system placeholder = %q", msgs[0].Content)
	}
}

func TestResolveConversationEmptyIsError(t *testing.T) {
	b := testBuilder()

	if _, err := b.ResolveConversation(convPrompt(), nil); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("nil conversation: expected ErrNoMessages, got %v", err)
	}
	if _, err := b.ResolveConversation(convPrompt(), &Conversation{}); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("zero turns: expected ErrNoMessages, got %v", err)
	}
}
