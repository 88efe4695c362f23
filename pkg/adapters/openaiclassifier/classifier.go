// Package openaiclassifier labels frames with an OpenAI-compatible vision
// chat model.
package openaiclassifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gpt-4o-mini"

// Prompt asks for one short label per category and a JSON object back.
const Prompt = `You are an expert film analyst and cinematographer. Analyze this video frame and classify it into the following categories. For each category, provide a single concise label (1-3 words).

- composition: the shot type or framing (e.g. Close-Up, Medium Shot, Wide Shot, Over-the-Shoulder, Bird's-Eye View)
- action: what the subjects are doing (e.g. Walking, Running, Talking, Fighting, Static)
- lighting: the lighting style (e.g. High-Key, Low-Key, Natural Light, Backlit, Neon)
- color: the dominant color palette (e.g. Warm Tones, Cool Tones, Monochrome, Saturated, Pastel)
- setting: the location or environment (e.g. Urban, Nature, Interior, Sci-Fi, Desert)

If a category does not apply to this frame, omit it. Respond only with a JSON object whose keys are the category names above and whose values are the labels.`

// Options configures the classifier.
type Options struct {
	Model string
	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL string
	// Timeout bounds a single request. Zero means no extra bound.
	Timeout time.Duration
	// HTTPClient replaces the default HTTP client.
	HTTPClient *http.Client
}

// Classifier implements ports.Classifier. The API token is read from the
// credential store on every call so a replaced key takes effect at once.
type Classifier struct {
	credentials ports.CredentialStore
	opts        Options
	logger      ports.Logger

	mu     sync.Mutex
	token  string
	client *openai.Client
}

// New creates a Classifier.
func New(credentials ports.CredentialStore, opts Options, logger ports.Logger) *Classifier {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return &Classifier{
		credentials: credentials,
		opts:        opts,
		logger:      logger.WithComponent("openai"),
	}
}

// Classify sends the image with the classification prompt and returns the
// labels the model produced.
func (c *Classifier) Classify(ctx context.Context, imageData []byte, mimeType string) (map[string]string, error) {
	client, err := c.clientFor(ctx)
	if err != nil {
		return nil, err
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: Prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    pipeline.DataURL(mimeType, imageData),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		if isCredentialError(err) {
			return nil, fmt.Errorf("%w: %v", ports.ErrInvalidCredential, err)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	c.logger.Debug("Model %s used %d tokens", resp.Model, resp.Usage.TotalTokens)
	return ParseLabels(resp.Choices[0].Message.Content)
}

func (c *Classifier) clientFor(ctx context.Context) (*openai.Client, error) {
	token, err := c.credentials.Load(ctx)
	if errors.Is(err, ports.ErrNoCredential) || (err == nil && strings.TrimSpace(token) == "") {
		return nil, fmt.Errorf("%w: no API key configured", ports.ErrInvalidCredential)
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && c.token == token {
		return c.client, nil
	}

	config := openai.DefaultConfig(token)
	if c.opts.BaseURL != "" {
		config.BaseURL = c.opts.BaseURL
	}
	if c.opts.HTTPClient != nil {
		config.HTTPClient = c.opts.HTTPClient
	}
	c.client = openai.NewClientWithConfig(config)
	c.token = token
	return c.client, nil
}

// isCredentialError reports authentication and authorization failures.
func isCredentialError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden {
			return true
		}
		if code, ok := apiErr.Code.(string); ok && code == "invalid_api_key" {
			return true
		}
		return false
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusUnauthorized || reqErr.HTTPStatusCode == http.StatusForbidden
	}
	return false
}

// ParseLabels extracts string labels from a model reply. Markdown code
// fences around the object are tolerated; non-string values are dropped.
func ParseLabels(content string) (map[string]string, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	if content == "" {
		return nil, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}
	labels := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			labels[k] = s
		}
	}
	return labels, nil
}

var _ ports.Classifier = (*Classifier)(nil)
