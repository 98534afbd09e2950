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

const anthropicVersion = "2023-06-01"

// AnthropicConfig configures a provider speaking Anthropic's messages API,
// which splits the system prompt out of the turn list and addresses
// images as typed content blocks rather than data URIs.
type AnthropicConfig struct {
	Name     string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	PoolSize int
}

// AnthropicProvider calls the Anthropic messages endpoint.
type AnthropicProvider struct {
	client *http.Client
	cfg    AnthropicConfig
}

var _ Provider = (*AnthropicProvider)(nil)

func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
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
	return &AnthropicProvider{
		client: &http.Client{Transport: transport},
		cfg:    cfg,
	}
}

func (p *AnthropicProvider) Name() string { return p.cfg.Name }

func (p *AnthropicProvider) Available(ctx context.Context) bool {
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

func (p *AnthropicProvider) addAuth(req *http.Request) {
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

type anthropicBlock struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Source *anthropicImage `json:"source,omitempty"`
}

type anthropicImage struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
	Model   string           `json:"model"`
}

// Send posts req to the messages endpoint, pulling any leading system
// turn out into the top-level "system" field the way Anthropic's wire
// format requires instead of a "system" role turn.
func (p *AnthropicProvider) Send(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	var system string
	msgs := req.Messages
	if len(msgs) > 0 && msgs[0].IsSystemPrompt() {
		system = msgs[0].Text()
		msgs = msgs[1:]
	}

	body := anthropicRequest{
		Model:       model,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Messages:    toAnthropicMessages(msgs),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/messages", bytes.NewReader(payload))
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

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Response{}, fmt.Errorf("llm: decoding %s response: %w", p.cfg.Name, err)
	}

	var text string
	for _, b := range parsed.Content {
		if b.Type == "text" {
			text += b.Text
		}
	}

	return Response{
		Text: text,
		Usage: Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		},
		Model: parsed.Model,
	}, nil
}

func toAnthropicMessages(msgs []pdl.Message) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == pdl.RoleReasoning {
			continue
		}
		role := "user"
		if m.Role == pdl.RoleAssistant {
			role = "assistant"
		}

		var blocks []anthropicBlock
		for _, c := range m.Content {
			if c.IsImage {
				blocks = append(blocks, anthropicBlock{
					Type: "image",
					Source: &anthropicImage{
						Type:      "base64",
						MediaType: "image/" + c.ImageType.Extension(),
						Data:      base64.StdEncoding.EncodeToString(c.Image),
					},
				})
				continue
			}
			if c.Text != "" {
				blocks = append(blocks, anthropicBlock{Type: "text", Text: c.Text})
			}
		}
		out = append(out, anthropicMessage{Role: role, Content: blocks})
	}
	return out
}
