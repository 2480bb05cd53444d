package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/avelkar/subweld/internal/subtitle"
)

// Item is one entry text sent for cleanup, keyed by its position in the
// track so results can be matched back.
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Refiner cleans up entry texts. Implementations must return exactly one
// result per input item, same indices.
type Refiner interface {
	Refine(ctx context.Context, items []Item) ([]Item, error)
}

// RefineTrack rewrites entry texts in place. Timings, order, and entry
// count never change; on any mismatch from the refiner the track is left
// untouched and an error returned.
func RefineTrack(ctx context.Context, r Refiner, track *subtitle.Track) error {
	if len(track.Entries) == 0 {
		return nil
	}

	items := make([]Item, len(track.Entries))
	for i, e := range track.Entries {
		items[i] = Item{Index: i, Text: e.Text}
	}

	results, err := r.Refine(ctx, items)
	if err != nil {
		return fmt.Errorf("refinement failed: %w", err)
	}
	if len(results) != len(items) {
		return fmt.Errorf("refinement returned %d results for %d entries", len(results), len(items))
	}

	texts := make([]string, len(track.Entries))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(texts) {
			return fmt.Errorf("refinement returned unknown index %d", res.Index)
		}
		text := strings.TrimSpace(res.Text)
		if text == "" {
			return fmt.Errorf("refinement returned empty text for index %d", res.Index)
		}
		texts[res.Index] = text
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("refinement missing result for index %d", i)
		}
		track.Entries[i].Text = text
	}
	return nil
}

// buildPrompt asks for punctuation and casing cleanup only. Rewording is
// explicitly off the table so timings keep matching the speech.
func buildPrompt(items []Item) string {
	var sb strings.Builder

	sb.WriteString("Clean up the following subtitle texts. ")
	sb.WriteString("Fix punctuation, capitalization, and obvious recognition typos.\n\n")

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Do NOT reword, translate, shorten, or merge texts.\n")
	sb.WriteString("2. Keep the language of each text unchanged.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("5. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the cleaned JSON array only:")

	return sb.String()
}

func extractItems(responseText string) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal([]byte(responseText), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
