package completion

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"prompterd/internal/message"
	"prompterd/internal/settings"
)

const defaultHost = "http://127.0.0.1:11434"

// Ollama is a Client backed by one or more Ollama instances. One api.Client
// is created per configured model key at startup; the clients are read-only
// after construction and shared across executions.
type Ollama struct {
	models  map[string]settings.Model
	clients map[string]*api.Client
	log     *slog.Logger
}

// NewOllama builds clients for every configured model. A bad host URL is a
// configuration error and fails construction.
func NewOllama(models map[string]settings.Model, log *slog.Logger) (*Ollama, error) {
	if log == nil {
		log = slog.Default()
	}
	o := &Ollama{
		models:  models,
		clients: make(map[string]*api.Client, len(models)),
		log:     log,
	}
	for key, m := range models {
		host := m.Host
		if host == "" {
			host = defaultHost
		}
		base, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("model %q: invalid host %q: %w", key, m.Host, err)
		}
		o.clients[key] = api.NewClient(base, http.DefaultClient)
	}
	return o, nil
}

func (o *Ollama) HasModel(modelKey string) bool {
	_, ok := o.clients[modelKey]
	return ok
}

func (o *Ollama) DisplayName(modelKey string) string {
	if m, ok := o.models[modelKey]; ok && m.DisplayName != "" {
		return m.DisplayName
	}
	return modelKey
}

// Complete runs a non-streaming chat completion.
func (o *Ollama) Complete(ctx context.Context, modelKey string, msgs []message.Message) (string, error) {
	client, m, err := o.lookup(modelKey)
	if err != nil {
		return "", err
	}
	req, err := o.chatRequest(m, msgs, false)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// CompleteStream runs a streaming chat completion, invoking fn per fragment.
// The returned text is the full accumulated output.
func (o *Ollama) CompleteStream(ctx context.Context, modelKey string, msgs []message.Message, fn StreamFunc) (string, error) {
	client, m, err := o.lookup(modelKey)
	if err != nil {
		return "", err
	}
	req, err := o.chatRequest(m, msgs, true)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		sb.WriteString(resp.Message.Content)
		if fn != nil {
			fn(Chunk{Text: resp.Message.Content, Accumulated: sb.String()})
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return sb.String(), nil
}

// ListModels returns the models available on every distinct configured host.
func (o *Ollama) ListModels(ctx context.Context) ([]ModelInfo, error) {
	seen := make(map[string]bool)
	var out []ModelInfo
	for key := range o.clients {
		host := o.models[key].Host
		if host == "" {
			host = defaultHost
		}
		if seen[host] {
			continue
		}
		seen[host] = true

		resp, err := o.clients[key].List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list models on %s: %w", host, err)
		}
		for _, m := range resp.Models {
			out = append(out, ModelInfo{
				Name:              m.Name,
				Host:              host,
				Size:              m.Size,
				ParameterSize:     m.Details.ParameterSize,
				QuantizationLevel: m.Details.QuantizationLevel,
				Family:            m.Details.Family,
			})
		}
	}
	return out, nil
}

// ModelInfo describes a model available on a backend instance.
type ModelInfo struct {
	Name              string `json:"name"`
	Host              string `json:"host"`
	Size              int64  `json:"size"`               // size in bytes
	ParameterSize     string `json:"parameter_size"`     // e.g. "14B", "7B"
	QuantizationLevel string `json:"quantization_level"` // e.g. "Q4_K_M"
	Family            string `json:"family"`             // e.g. "qwen2"
}

func (o *Ollama) lookup(modelKey string) (*api.Client, settings.Model, error) {
	client, ok := o.clients[modelKey]
	if !ok {
		return nil, settings.Model{}, fmt.Errorf("%q: %w", modelKey, ErrUnknownModel)
	}
	return client, o.models[modelKey], nil
}

func (o *Ollama) chatRequest(m settings.Model, msgs []message.Message, stream bool) (*api.ChatRequest, error) {
	apiMsgs, err := toAPIMessages(msgs)
	if err != nil {
		return nil, err
	}
	opts := map[string]any{}
	if m.Temperature != nil {
		opts["temperature"] = *m.Temperature
	}
	if m.NumCtx > 0 {
		opts["num_ctx"] = m.NumCtx
	}
	return &api.ChatRequest{
		Model:    m.Model,
		Messages: apiMsgs,
		Stream:   &stream,
		Options:  opts,
	}, nil
}

// toAPIMessages converts resolved messages to the wire form, decoding base64
// image payloads. A malformed payload fails the whole request before any
// backend call.
func toAPIMessages(msgs []message.Message) ([]api.Message, error) {
	out := make([]api.Message, 0, len(msgs))
	for _, msg := range msgs {
		am := api.Message{Role: msg.Role, Content: msg.Content}
		for _, img := range msg.Images {
			data, err := base64.StdEncoding.DecodeString(img.Data)
			if err != nil {
				return nil, fmt.Errorf("decode %s image payload: %w", img.MediaType, err)
			}
			am.Images = append(am.Images, api.ImageData(data))
		}
		out = append(out, am)
	}
	return out, nil
}
