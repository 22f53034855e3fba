package SummarizeMessages

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"slack-channel-summariser/Models"

	"google.golang.org/genai"
)

type SummaryResult = Models.SummaryResult

const (
	summaryTemperature = 0.5

	fallbackTopic       = "Discussion"
	emptyInputTopic     = "No topic"
	emptyInputSummary   = "No messages to summarize."
	missingSummaryText  = "No summary generated."
	parseFailureSummary = "Failed to parse the AI-generated summary."
)

// summaryInstructions is the fixed instruction template. The message
// batch is appended after it, joined with blank lines.
const summaryInstructions = `You will be given a batch of chat messages from one discussion, separated by blank lines.
Summarize the discussion.
Respond with strict JSON only, no code fences, using exactly these keys:
{"topic": "...", "summary": "...", "actionItems": ["...", "..."]}
"topic" is a short title for the discussion, "summary" is one concise paragraph,
and "actionItems" lists concrete follow-ups mentioned in the messages (empty array if none).`

// GenAiSummarizer is the primary Models.Summarizer backed by the Gemini
// completion API.
type GenAiSummarizer struct {
	client *genai.Client
	model  string
}

func NewGenAiSummarizer(client *genai.Client, model string) *GenAiSummarizer {
	return &GenAiSummarizer{client: client, model: model}
}

// Summarize sends the batch to the model and parses the structured
// result. Empty input short-circuits to the canned result without any
// network call. Malformed model output degrades to the parse-failure
// result; only genuine upstream failures return an error.
func (s *GenAiSummarizer) Summarize(ctx context.Context, texts []string) (SummaryResult, error) {
	if len(texts) == 0 {
		return EmptyInputResult(), nil
	}

	generateContentConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](summaryTemperature),
		ResponseMIMEType: "application/json",
	}

	generateContentResult, generateContentError := s.client.Models.GenerateContent(
		ctx,
		s.model,
		genai.Text(BuildPrompt(texts)),
		generateContentConfig,
	)
	if generateContentError != nil {
		log.Printf("SummarizeMessages:Summarize#Error generating content: %s", generateContentError.Error())
		return SummaryResult{}, classifyGenAiError(generateContentError)
	}

	return ParseSummaryJSON(collectResponseText(generateContentResult)), nil
}

// BuildPrompt embeds the message batch in the fixed instruction
// template, joined with a blank-line separator.
func BuildPrompt(texts []string) string {
	var prompt strings.Builder
	prompt.WriteString(summaryInstructions)
	prompt.WriteString("\n\nMessages:\n\n")
	prompt.WriteString(strings.Join(texts, "\n\n"))
	return prompt.String()
}

func collectResponseText(result *genai.GenerateContentResponse) string {
	var raw strings.Builder
	if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			raw.WriteString(part.Text)
		}
	}
	return raw.String()
}

// ParseSummaryJSON turns the raw model output into a SummaryResult.
// Non-JSON output yields the fixed parse-failure result; missing fields
// fall back individually. It never returns an error so the caller's
// error path stays reserved for upstream failures.
func ParseSummaryJSON(raw string) SummaryResult {
	cleaned := cleanJSON(raw)

	var payload struct {
		Topic       string          `json:"topic"`
		Summary     string          `json:"summary"`
		ActionItems json.RawMessage `json:"actionItems"`
	}
	if jsonUnmarshallError := json.Unmarshal([]byte(cleaned), &payload); jsonUnmarshallError != nil {
		log.Printf("SummarizeMessages:ParseSummaryJSON#Error unmarshalling model output: %s", jsonUnmarshallError.Error())
		return ParseFailureResult()
	}

	result := SummaryResult{
		Topic:       payload.Topic,
		Summary:     payload.Summary,
		ActionItems: []string{},
	}
	if result.Topic == "" {
		result.Topic = fallbackTopic
	}
	if result.Summary == "" {
		result.Summary = missingSummaryText
	}
	if len(payload.ActionItems) > 0 {
		var items []string
		if actionItemsError := json.Unmarshal(payload.ActionItems, &items); actionItemsError == nil {
			result.ActionItems = items
		}
	}
	if result.ActionItems == nil {
		result.ActionItems = []string{}
	}
	return result
}

// EmptyInputResult is the canned result for an empty message batch.
func EmptyInputResult() SummaryResult {
	return SummaryResult{
		Topic:       emptyInputTopic,
		Summary:     emptyInputSummary,
		ActionItems: []string{},
	}
}

// ParseFailureResult is the canned result for unparseable model output.
func ParseFailureResult() SummaryResult {
	return SummaryResult{
		Topic:       fallbackTopic,
		Summary:     parseFailureSummary,
		ActionItems: []string{},
	}
}

// cleanJSON strips the markdown code fences some models wrap around
// their JSON output.
func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

func classifyGenAiError(err error) error {
	const op = "genai.generateContent"

	var apiError genai.APIError
	if errors.As(err, &apiError) {
		switch {
		case apiError.Code == 429 || apiError.Status == "RESOURCE_EXHAUSTED":
			return Models.NewUpstreamError(Models.UpstreamRateLimit, op, apiError.Status, err)
		case apiError.Code == 401 || apiError.Code == 403 ||
			apiError.Status == "UNAUTHENTICATED" || apiError.Status == "PERMISSION_DENIED":
			return Models.NewUpstreamError(Models.UpstreamAuth, op, apiError.Status, err)
		}
	}
	return Models.NewUpstreamError(Models.UpstreamGeneric, op, "", err)
}
