package SummarizeMessages

import (
	"context"
	"strings"
	"testing"
)

func TestSummarizeEmptyInputSkipsTheModel(t *testing.T) {
	// a nil client would panic on any network attempt, so a clean return
	// proves the model was never called
	summarizer := NewGenAiSummarizer(nil, "test-model")

	result, summarizeError := summarizer.Summarize(context.Background(), nil)
	if summarizeError != nil {
		t.Fatalf("Summarize failed: %v", summarizeError)
	}
	if result.Topic != "No topic" {
		t.Fatalf("topic = %q, want %q", result.Topic, "No topic")
	}
	if result.Summary != "No messages to summarize." {
		t.Fatalf("summary = %q, want %q", result.Summary, "No messages to summarize.")
	}
	if len(result.ActionItems) != 0 {
		t.Fatalf("action items = %v, want empty", result.ActionItems)
	}
}

func TestAnthropicSummarizeEmptyInputSkipsTheModel(t *testing.T) {
	summarizer := NewAnthropicSummarizer("test-key", "test-model")

	result, summarizeError := summarizer.Summarize(context.Background(), []string{})
	if summarizeError != nil {
		t.Fatalf("Summarize failed: %v", summarizeError)
	}
	if result.Summary != "No messages to summarize." {
		t.Fatalf("summary = %q, want the empty-input fallback", result.Summary)
	}
}

func TestParseSummaryJSONMalformedOutput(t *testing.T) {
	result := ParseSummaryJSON("sorry, I cannot produce JSON today")

	if result.Summary != "Failed to parse the AI-generated summary." {
		t.Fatalf("summary = %q, want the parse-failure fallback", result.Summary)
	}
	if len(result.ActionItems) != 0 {
		t.Fatalf("action items = %v, want empty", result.ActionItems)
	}
	if result.Topic != "Discussion" {
		t.Fatalf("topic = %q, want %q", result.Topic, "Discussion")
	}
}

func TestParseSummaryJSONPartialFields(t *testing.T) {
	cases := []struct {
		name        string
		raw         string
		wantTopic   string
		wantSummary string
		wantItems   int
	}{
		{
			name:        "missing action items",
			raw:         `{"topic":"Launch","summary":"Shipping Friday."}`,
			wantTopic:   "Launch",
			wantSummary: "Shipping Friday.",
			wantItems:   0,
		},
		{
			name:        "missing topic",
			raw:         `{"summary":"Shipping Friday.","actionItems":["tag the release"]}`,
			wantTopic:   "Discussion",
			wantSummary: "Shipping Friday.",
			wantItems:   1,
		},
		{
			name:        "missing summary",
			raw:         `{"topic":"Launch","actionItems":[]}`,
			wantTopic:   "Launch",
			wantSummary: "No summary generated.",
			wantItems:   0,
		},
		{
			name:        "action items not a sequence",
			raw:         `{"topic":"Launch","summary":"Shipping Friday.","actionItems":"tag the release"}`,
			wantTopic:   "Launch",
			wantSummary: "Shipping Friday.",
			wantItems:   0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ParseSummaryJSON(tc.raw)
			if result.Topic != tc.wantTopic {
				t.Fatalf("topic = %q, want %q", result.Topic, tc.wantTopic)
			}
			if result.Summary != tc.wantSummary {
				t.Fatalf("summary = %q, want %q", result.Summary, tc.wantSummary)
			}
			if len(result.ActionItems) != tc.wantItems {
				t.Fatalf("action items = %v, want %d entries", result.ActionItems, tc.wantItems)
			}
		})
	}
}

func TestParseSummaryJSONStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"topic\":\"Launch\",\"summary\":\"Shipping Friday.\",\"actionItems\":[\"tag the release\"]}\n```"

	result := ParseSummaryJSON(raw)
	if result.Topic != "Launch" {
		t.Fatalf("topic = %q, want Launch", result.Topic)
	}
	if len(result.ActionItems) != 1 || result.ActionItems[0] != "tag the release" {
		t.Fatalf("action items = %v", result.ActionItems)
	}
}

func TestBuildPromptJoinsWithBlankLines(t *testing.T) {
	prompt := BuildPrompt([]string{"first message", "second message"})

	if !strings.Contains(prompt, "first message\n\nsecond message") {
		t.Fatalf("texts not joined with a blank line:\n%s", prompt)
	}
	for _, key := range []string{`"topic"`, `"summary"`, `"actionItems"`} {
		if !strings.Contains(prompt, key) {
			t.Fatalf("prompt does not request key %s:\n%s", key, prompt)
		}
	}
}
