// Package message builds the message lists sent to the completion backend:
// placeholder substitution for single-turn prompts and multi-turn
// conversation merging, including inline image payloads.
package message

import (
	"errors"
	"fmt"
	"strings"

	"prompterd/internal/settings"
)

// ErrNoMessages is returned when a prompt or conversation resolves to zero
// usable messages. Executing such a request would send an empty request to
// the backend, so resolution rejects it up front.
var ErrNoMessages = errors.New("no usable messages after resolution")

// Image is an inline image attachment. Data is base64-encoded; MediaType is
// an image MIME type such as "image/png".
type Image struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Message is one resolved request message.
type Message struct {
	Role    string  `json:"role"`
	Content string  `json:"content"`
	Images  []Image `json:"images,omitempty"`
}

// Turn is one user or assistant turn in a conversation payload.
type Turn struct {
	Role   string  `json:"role"`
	Text   string  `json:"text"`
	Images []Image `json:"images,omitempty"`
}

// Conversation is the structured multi-turn payload an item may carry.
// ContextText and ContextImages belong to the first user turn.
type Conversation struct {
	ContextText   string  `json:"context_text,omitempty"`
	ContextImages []Image `json:"context_images,omitempty"`
	Turns         []Turn  `json:"turns"`
}

// PlaceholderFunc produces the replacement value for a placeholder. It
// receives the execution's resolved input text.
type PlaceholderFunc func(input string) string

// Builder resolves prompt templates and conversation payloads into message
// lists. Placeholders are written as {{name}} in message content. The
// clipboard and context placeholders are registered by default; callers may
// register additional ones.
type Builder struct {
	cfg          settings.Settings
	placeholders map[string]PlaceholderFunc
}

// NewBuilder creates a builder over the given settings (prompt definitions
// and file-backed message content resolve through it).
func NewBuilder(cfg settings.Settings) *Builder {
	b := &Builder{
		cfg:          cfg,
		placeholders: make(map[string]PlaceholderFunc),
	}
	b.Register("clipboard", func(input string) string { return input })
	b.Register("context", func(input string) string { return input })
	return b
}

// Register adds or replaces a placeholder processor.
func (b *Builder) Register(name string, fn PlaceholderFunc) {
	b.placeholders[name] = fn
}

// Placeholders returns the registered placeholder names.
func (b *Builder) Placeholders() []string {
	names := make([]string, 0, len(b.placeholders))
	for name := range b.placeholders {
		names = append(names, name)
	}
	return names
}

// ResolvePrompt builds the single-turn message list for a prompt: every
// template message with its placeholders substituted against input. Messages
// that resolve to empty content are dropped; an entirely empty result is
// ErrNoMessages.
func (b *Builder) ResolvePrompt(prompt settings.Prompt, input string) ([]Message, error) {
	var out []Message
	for _, tmpl := range prompt.Messages {
		content, err := b.cfg.MessageContent(tmpl)
		if err != nil {
			return nil, err
		}
		content = b.substitute(content, input)
		if strings.TrimSpace(content) == "" {
			continue
		}
		role := tmpl.Role
		if role == "" {
			role = "user"
		}
		out = append(out, Message{Role: role, Content: content})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("prompt %q: %w", prompt.ID, ErrNoMessages)
	}
	return out, nil
}

// ResolveConversation builds the message list for a multi-turn payload: the
// prompt's system messages once, then one message per turn in order. The
// conversation context is folded into the first user turn.
func (b *Builder) ResolveConversation(prompt settings.Prompt, conv *Conversation) ([]Message, error) {
	if conv == nil || len(conv.Turns) == 0 {
		return nil, fmt.Errorf("prompt %q: conversation has no turns: %w", prompt.ID, ErrNoMessages)
	}

	var out []Message
	for _, tmpl := range prompt.Messages {
		if tmpl.Role != "system" {
			continue
		}
		content, err := b.cfg.MessageContent(tmpl)
		if err != nil {
			return nil, err
		}
		content = b.substitute(content, conv.ContextText)
		if strings.TrimSpace(content) == "" {
			continue
		}
		out = append(out, Message{Role: "system", Content: content})
	}

	firstUser := true
	for _, turn := range conv.Turns {
		role := turn.Role
		if role == "" {
			role = "user"
		}
		msg := Message{Role: role, Content: turn.Text, Images: turn.Images}
		if role == "user" && firstUser {
			firstUser = false
			if conv.ContextText != "" {
				msg.Content = wrapContext(conv.ContextText, turn.Text)
			}
			if len(conv.ContextImages) > 0 {
				msg.Images = append(append([]Image{}, conv.ContextImages...), turn.Images...)
			}
		}
		if strings.TrimSpace(msg.Content) == "" && len(msg.Images) == 0 {
			continue
		}
		out = append(out, msg)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("prompt %q: %w", prompt.ID, ErrNoMessages)
	}
	return out, nil
}

// wrapContext prefixes a user message with its working context block.
func wrapContext(context, text string) string {
	return fmt.Sprintf("<context>\n%s\n</context>\n\n%s", context, text)
}

func (b *Builder) substitute(content, input string) string {
	for name, fn := range b.placeholders {
		pattern := "{{" + name + "}}"
		if !strings.Contains(content, pattern) {
			continue
		}
		content = strings.ReplaceAll(content, pattern, fn(input))
	}
	return content
}
