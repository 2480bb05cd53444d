package refine

import (
	"context"
	"fmt"
	"sort"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultBatchSize is the number of entry texts per API request.
const DefaultBatchSize = 50

// AnthropicRefiner cleans up entry texts with Claude.
type AnthropicRefiner struct {
	client    anthropic.Client
	model     anthropic.Model
	batchSize int
}

func NewAnthropicRefiner(apiKey, model string, batchSize int) (*AnthropicRefiner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeHaiku4_5
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &AnthropicRefiner{
		client:    client,
		model:     m,
		batchSize: batchSize,
	}, nil
}

func (r *AnthropicRefiner) Refine(ctx context.Context, items []Item) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}

	if len(items) <= r.batchSize {
		return r.refineBatch(ctx, items)
	}

	var allResults []Item
	for i := 0; i < len(items); i += r.batchSize {
		end := i + r.batchSize
		if end > len(items) {
			end = len(items)
		}

		results, err := r.refineBatch(ctx, items[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i/r.batchSize, err)
		}
		allResults = append(allResults, results...)
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].Index < allResults[j].Index
	})

	return allResults, nil
}

func (r *AnthropicRefiner) refineBatch(ctx context.Context, items []Item) ([]Item, error) {
	prompt := buildPrompt(items)

	message, err := r.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     r.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("refinement request failed: %w", err)
	}

	return r.parseResponse(message, len(items))
}

func (r *AnthropicRefiner) parseResponse(message *anthropic.Message, expectedCount int) ([]Item, error) {
	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Anthropic response")
	}

	responseText = cleanJSONResponse(responseText)

	results, err := extractItems(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	if len(results) != expectedCount {
		return nil, fmt.Errorf("expected %d results, got %d", expectedCount, len(results))
	}

	return results, nil
}
