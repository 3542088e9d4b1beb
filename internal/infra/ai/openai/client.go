package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/prompt"
)

const (
	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"
	DefaultModel   = "google/gemini-2.5-pro"
)

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int // 0 leaves the limit to the gateway
}

// Client talks to any OpenAI compatible chat-completions gateway.
type Client struct {
	*openai.Client
	Model     string
	MaxTokens int
	keyed     bool
}

func NewClient(cfg Config) *Client {
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		conf.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		Client:    openai.NewClientWithConfig(conf),
		Model:     model,
		MaxTokens: cfg.MaxTokens,
		keyed:     cfg.APIKey != "",
	}
}

func (c *Client) Analyze(ctx context.Context, img ai.Image) (string, error) {
	if !c.keyed {
		return "", ai.Misconfigured("AI_API_KEY is not configured")
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.SystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.UserPrompt(img.FileName)},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: DataURI(img)}},
				},
			},
		},
	}
	if c.MaxTokens > 0 {
		// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
		if isReasoningModel(c.Model) {
			req.MaxCompletionTokens = c.MaxTokens
		} else {
			req.MaxTokens = c.MaxTokens
		}
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ai.EmptyResponse(nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// DataURI inlines the image the way chat-completions vision inputs expect it.
func DataURI(img ai.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func isReasoningModel(model string) bool {
	m := model
	if i := strings.LastIndex(m, "/"); i >= 0 {
		m = m[i+1:]
	}
	return strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4") || strings.HasPrefix(m, "gpt-5")
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return ai.FromStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return ai.FromStatus(reqErr.HTTPStatusCode, err)
	}
	return &ai.Error{Kind: ai.KindUpstreamFailure, Message: ai.ErrUpstreamFailure.Message, Cause: err}
}
