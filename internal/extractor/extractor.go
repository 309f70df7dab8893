// Package extractor turns a photographed academic calendar into calendar
// events using an OpenAI vision-capable chat model.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
)

const (
	DefaultModel = "gpt-4o"
	maxTokens    = 2000
)

const prompt = `You are an academic calendar parser. Extract ALL dates from this image.
Return ONLY a JSON array like this (nothing else, no markdown):
[
  {
    "title": "Mid Semester Exam",
    "date": "2025-03-15",
    "type": "exam",
    "description": "optional details"
  }
]
Types allowed: exam, holiday, semester_end, assignment, other`

var ErrEmptyResponse = errors.New("model returned no content")

// ParsedEvent is one item the model extracted.
type ParsedEvent struct {
	Title       string           `json:"title"`
	Date        string           `json:"date"`
	Type        models.EventType `json:"type"`
	Description string           `json:"description"`
}

type Extractor interface {
	Extract(ctx context.Context, imageURL string) ([]ParsedEvent, error)
}

// OpenAI sends one chat completion per call. There is no retry.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds an extractor. baseURL overrides the API endpoint when
// non-empty.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAI) Extract(ctx context.Context, imageURL string) ([]ParsedEvent, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return Parse(resp.Choices[0].Message.Content)
}

var fence = regexp.MustCompile("```json\\n?|\\n?```")

// Parse decodes the model's reply. A single malformed item fails the whole
// reply; unknown event types become "other".
func Parse(content string) ([]ParsedEvent, error) {
	clean := strings.TrimSpace(fence.ReplaceAllString(content, ""))
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var items []ParsedEvent
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	for i := range items {
		e := &items[i]
		e.Title = strings.TrimSpace(e.Title)
		e.Date = strings.TrimSpace(e.Date)
		if e.Title == "" {
			return nil, fmt.Errorf("event %d: title is missing", i)
		}
		if !models.ValidDate(e.Date) {
			return nil, fmt.Errorf("event %d: invalid date %q", i, e.Date)
		}
		if !e.Type.Valid() {
			e.Type = models.EventOther
		}
	}
	return items, nil
}
