package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ragit-kb/ragit/internal/pdl"
)

const defaultPoolSize = 8

// OpenAiLikeConfig configures a provider speaking the OpenAI chat
// completion wire format, which most third-party providers (vLLM,
// Groq, OpenRouter, local llama.cpp servers) also implement.
type OpenAiLikeConfig struct {
	Name       string
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	PoolSize   int
}

// OpenAiLikeProvider calls a chat-completions-style HTTP endpoint.
type OpenAiLikeProvider struct {
	client  *http.Client
	cfg     OpenAiLikeConfig
}

var _ Provider = (*OpenAiLikeProvider)(nil)

// NewOpenAiLikeProvider builds a provider with a pooled HTTP client,
// mirroring the teacher's embedder's connection-pooling transport
// rather than the zero-value http.Client a bare-stdlib client would use.
func NewOpenAiLikeProvider(cfg OpenAiLikeConfig) *OpenAiLikeProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	transport := &http.Transport{
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
		MaxConnsPerHost:     cfg.PoolSize * 2,
		IdleConnTimeout:     10 * time.Second,
	}
	return &OpenAiLikeProvider{
		client: &http.Client{Transport: transport},
		cfg:    cfg,
	}
}

func (p *OpenAiLikeProvider) Name() string { return p.cfg.Name }

func (p *OpenAiLikeProvider) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	p.addAuth(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (p *OpenAiLikeProvider) addAuth(req *http.Request) {
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatMessage marshals as a bare string for text-only turns and as a
// content-parts array once any image chunk is present, matching the
// OpenAI vision wire format without forcing every caller onto it.
type chatMessage struct {
	Role  string
	Text  string
	Parts []contentPart
}

func (m chatMessage) MarshalJSON() ([]byte, error) {
	if len(m.Parts) == 0 {
		return json.Marshal(struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{m.Role, m.Text})
	}
	return json.Marshal(struct {
		Role    string        `json:"role"`
		Content []contentPart `json:"content"`
	}{m.Role, m.Parts})
}

func (m *chatMessage) UnmarshalJSON(data []byte) error {
	var flat struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &flat); err == nil {
		m.Role, m.Text = flat.Role, flat.Content
		return nil
	}
	var parts struct {
		Role    string        `json:"role"`
		Content []contentPart `json:"content"`
	}
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	m.Role, m.Parts = parts.Role, parts.Content
	for _, p := range parts.Content {
		if p.Type == "text" {
			m.Text += p.Text
		}
	}
	return nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Model   string       `json:"model"`
}

// Send posts req to the chat-completions endpoint and decodes the first
// choice's text.
func (p *OpenAiLikeProvider) Send(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	body := chatRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    toChatMessages(req.Messages),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	p.addAuth(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("llm: request to %s failed: %w", p.cfg.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("llm: %s returned status %d: %s", p.cfg.Name, resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Response{}, fmt.Errorf("llm: decoding %s response: %w", p.cfg.Name, err)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("llm: %s returned no choices", p.cfg.Name)
	}

	return Response{
		Text: parsed.Choices[0].Message.Text,
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
		Model: parsed.Model,
	}, nil
}

func toChatMessages(msgs []pdl.Message) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == pdl.RoleReasoning {
			continue
		}
		if !m.HasImage() {
			out = append(out, chatMessage{Role: string(m.Role), Text: m.Text()})
			continue
		}

		var parts []contentPart
		for _, c := range m.Content {
			if c.IsImage {
				dataURL := fmt.Sprintf("data:image/%s;base64,%s", c.ImageType.Extension(), base64.StdEncoding.EncodeToString(c.Image))
				parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: dataURL}})
				continue
			}
			if c.Text != "" {
				parts = append(parts, contentPart{Type: "text", Text: c.Text})
			}
		}
		out = append(out, chatMessage{Role: string(m.Role), Text: m.Text(), Parts: parts})
	}
	return out
}
