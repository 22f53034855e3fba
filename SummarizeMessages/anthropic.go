package SummarizeMessages

import (
	"context"
	"errors"
	"log"
	"strings"

	"slack-channel-summariser/Models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicSummarizer is the alternative Models.Summarizer backed by
// Claude, selected with SUMMARIZER_BACKEND=anthropic. It shares the
// prompt template and the parsing fallbacks with the Gemini backend.
type AnthropicSummarizer struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicSummarizer(apiKey, model string) *AnthropicSummarizer {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicSummarizer{
		client: &client,
		model:  model,
	}
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, texts []string) (SummaryResult, error) {
	if len(texts) == 0 {
		return EmptyInputResult(), nil
	}

	message, messagesNewError := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   1024,
		Temperature: anthropic.Float(summaryTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(texts))),
		},
	})
	if messagesNewError != nil {
		log.Printf("SummarizeMessages:AnthropicSummarize#Error calling Claude: %s", messagesNewError.Error())
		return SummaryResult{}, classifyAnthropicError(messagesNewError)
	}

	var raw strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			raw.WriteString(content.Text)
		}
	}

	return ParseSummaryJSON(raw.String()), nil
}

func classifyAnthropicError(err error) error {
	const op = "anthropic.messages"

	var apiError *anthropic.Error
	if errors.As(err, &apiError) {
		switch apiError.StatusCode {
		case 429, 529:
			return Models.NewUpstreamError(Models.UpstreamRateLimit, op, "rate_limited", err)
		case 401, 403:
			return Models.NewUpstreamError(Models.UpstreamAuth, op, "unauthorized", err)
		}
	}
	return Models.NewUpstreamError(Models.UpstreamGeneric, op, "", err)
}
