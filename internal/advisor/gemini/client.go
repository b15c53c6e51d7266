// Package gemini backs the advisory service with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/agrokarfi/agrokarfi/internal/advisor"
)

// DefaultModel is the Gemini model used for advisory conversations.
const DefaultModel = "gemini-2.0-flash"

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey authenticates to the Generative Language API (required).
	APIKey string

	// Model overrides DefaultModel.
	Model string

	// SystemInstruction frames every conversation.
	SystemInstruction string
}

// Client generates advisory replies with Gemini.
type Client struct {
	client            *genai.Client
	modelName         string
	systemInstruction string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	return &Client{
		client:            client,
		modelName:         modelName,
		systemInstruction: cfg.SystemInstruction,
	}, nil
}

// Name returns the backing model name.
func (c *Client) Name() string {
	return c.modelName
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Generate replays the session history into a fresh chat and sends the
// grounding documents together with the prompt, mirroring how the
// conversation was held so far.
func (c *Client) Generate(ctx context.Context, history []advisor.Message, docs []advisor.Document, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	if c.systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(c.systemInstruction)},
		}
	}

	session := model.StartChat()
	session.History = toContents(history)

	parts := make([]genai.Part, 0, len(docs)+1)
	for _, doc := range docs {
		parts = append(parts, genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data})
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := session.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini send message: %w", err)
	}

	reply := collectText(resp)
	if reply == "" {
		return "", errors.New("gemini returned no text content")
	}

	return reply, nil
}

// toContents converts stored transcript turns to wire contents.
func toContents(history []advisor.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		contents = append(contents, &genai.Content{
			Role:  m.Role,
			Parts: []genai.Part{genai.Text(m.Text)},
		})
	}
	return contents
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
