package main

import (
	"context"
	"log"
	"net/http"

	"slack-channel-summariser/Config"
	"slack-channel-summariser/Dispatch"
	"slack-channel-summariser/Models"
	"slack-channel-summariser/Scheduler"
	"slack-channel-summariser/SlackAdapter"
	"slack-channel-summariser/SummarizeMessages"

	"github.com/slack-go/slack"
	"google.golang.org/genai"
)

func buildSummarizer(ctx context.Context, cfg Config.Config) (Models.Summarizer, error) {
	if cfg.SummarizerBackend == Config.BackendAnthropic {
		return SummarizeMessages.NewAnthropicSummarizer(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	}

	genAiClient, genAiError := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if genAiError != nil {
		return nil, genAiError
	}
	return SummarizeMessages.NewGenAiSummarizer(genAiClient, cfg.GenAiModel), nil
}

func main() {
	cfg := Config.Load()

	missing := cfg.Validate()
	for _, validationError := range missing {
		log.Printf("main#Configuration problem: %s", validationError.Error())
	}
	if len(missing) > 0 && cfg.IsProduction() {
		log.Fatal("main#Refusing to start in production with missing credentials")
	}

	ctx := context.Background()

	slackClient := slack.New(cfg.SlackBotToken)
	source := SlackAdapter.New(slackClient)

	summarizer, summarizerError := buildSummarizer(ctx, cfg)
	if summarizerError != nil {
		log.Fatal("main#Failed to initialise summarizer: ", summarizerError)
	}

	dispatcher := Dispatch.New(source, summarizer, cfg.SlackSigningSecret)

	if cfg.DigestSchedule != "" && cfg.DefaultChannel != "" {
		digest := Scheduler.New(source, summarizer, cfg.DefaultChannel, cfg.DigestSchedule)
		if startError := digest.Start(); startError != nil {
			log.Fatal("main#Failed to start digest scheduler: ", startError)
		}
		defer digest.Stop()
	}

	http.HandleFunc("/slack/events", dispatcher.HandleWebhook)

	// health endpoint for the deployment platform
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Service running"))
	})

	log.Printf("main#Listening on port %s", cfg.ListenPort)
	log.Fatal(http.ListenAndServe(":"+cfg.ListenPort, nil))
}
