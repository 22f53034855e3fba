package Dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"slack-channel-summariser/Models"
	"slack-channel-summariser/PublishSummary"
	"slack-channel-summariser/SlackAdapter"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const commandSummarize = "/summarize"

// Dispatcher binds the two trigger kinds (slash command and message
// shortcut) to the orchestration flow. Every trigger is acknowledged
// within Slack's webhook deadline first; the fetch/summarize/post work
// continues in a background task whose terminal outcome is logged.
type Dispatcher struct {
	source        Models.MessageSource
	summarizer    Models.Summarizer
	signingSecret string

	now        func() time.Time
	background sync.WaitGroup
}

func New(source Models.MessageSource, summarizer Models.Summarizer, signingSecret string) *Dispatcher {
	return &Dispatcher{
		source:        source,
		summarizer:    summarizer,
		signingSecret: signingSecret,
		now:           time.Now,
	}
}

// HandleWebhook is the single inbound endpoint. The payload decides the
// path: JSON bodies are Events API calls (only the URL-verification
// handshake matters), form bodies carry either an interaction payload
// or a slash command.
func (d *Dispatcher) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, verifyError := d.verifiedBody(r)
	if verifyError != nil {
		log.Printf("Dispatch:HandleWebhook#Rejecting request with bad signature: %s", verifyError.Error())
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		d.handleEvent(w, body)
		return
	}

	// the body was consumed by the signature check; restore it for the
	// form parsers
	r.Body = io.NopCloser(bytes.NewReader(body))
	if parseFormError := r.ParseForm(); parseFormError != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	if payload := r.PostForm.Get("payload"); payload != "" {
		d.handleShortcut(w, payload)
		return
	}
	d.handleSlashCommand(w, r)
}

// verifiedBody reads the request body and checks the Slack signature
// over it. Verification itself is delegated to slack-go.
func (d *Dispatcher) verifiedBody(r *http.Request) ([]byte, error) {
	body, readBodyError := io.ReadAll(r.Body)
	if readBodyError != nil {
		return nil, readBodyError
	}

	verifier, newVerifierError := slack.NewSecretsVerifier(r.Header, d.signingSecret)
	if newVerifierError != nil {
		return nil, newVerifierError
	}
	if _, writeError := verifier.Write(body); writeError != nil {
		return nil, writeError
	}
	if ensureError := verifier.Ensure(); ensureError != nil {
		return nil, ensureError
	}
	return body, nil
}

// handleEvent answers the Events API. The URL-verification handshake
// echoes the challenge verbatim as the entire response body and skips
// everything else; other callbacks are acknowledged and dropped.
func (d *Dispatcher) handleEvent(w http.ResponseWriter, body []byte) {
	event, parseEventError := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if parseEventError != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}

	if event.Type == slackevents.URLVerification {
		var challenge slackevents.ChallengeResponse
		if unmarshalError := json.Unmarshal(body, &challenge); unmarshalError != nil {
			http.Error(w, "invalid challenge payload", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleShortcut handles the message context-menu trigger.
func (d *Dispatcher) handleShortcut(w http.ResponseWriter, rawPayload string) {
	var callback slack.InteractionCallback
	if unmarshalError := json.Unmarshal([]byte(rawPayload), &callback); unmarshalError != nil {
		http.Error(w, "invalid interaction payload", http.StatusBadRequest)
		return
	}
	if callback.Type != slack.InteractionTypeMessageAction {
		w.WriteHeader(http.StatusOK)
		return
	}

	channelID := callback.Channel.ID
	userID := callback.User.ID
	messageID := callback.Message.Timestamp
	threadRootID := callback.Message.ThreadTimestamp
	inlineText := callback.Message.Text

	// ack before any upstream work; the original response path closes here
	w.WriteHeader(http.StatusOK)

	d.spawn("shortcut", channelID, userID, func(ctx context.Context) error {
		return d.runShortcut(ctx, channelID, userID, messageID, threadRootID, inlineText)
	})
}

// handleSlashCommand handles the /summarize trigger.
func (d *Dispatcher) handleSlashCommand(w http.ResponseWriter, r *http.Request) {
	command, parseCommandError := slack.SlashCommandParse(r)
	if parseCommandError != nil {
		http.Error(w, "invalid slash command", http.StatusBadRequest)
		return
	}
	if command.Command != commandSummarize {
		writeEphemeralAck(w, fmt.Sprintf("Unknown command %s.", command.Command))
		return
	}

	channelArg := strings.TrimSpace(command.Text)
	invokingChannelID := command.ChannelID
	userID := command.UserID

	writeEphemeralAck(w, "Working on the summary, it will be posted here shortly.")

	d.spawn("slash", invokingChannelID, userID, func(ctx context.Context) error {
		return d.runSlashCommand(ctx, invokingChannelID, userID, channelArg)
	})
}

// runSlashCommand summarizes today's messages (requester-local midnight
// to now) in the explicit or invoking channel.
func (d *Dispatcher) runSlashCommand(ctx context.Context, invokingChannelID, userID, channelArg string) error {
	channelID := invokingChannelID
	if channelArg != "" {
		resolvedID, resolveChannelError := d.source.ResolveChannelRef(ctx, channelArg)
		if resolveChannelError != nil {
			return resolveChannelError
		}
		channelID = resolvedID
	}

	offsetSeconds := d.source.ResolveTimezoneOffset(ctx, userID)
	windowStart, windowEnd := SlackAdapter.TodayWindow(d.now(), offsetSeconds)

	request := Models.SummaryRequest{
		Scope:          Models.ChannelScope(channelID, windowStart, windowEnd),
		RequestingUser: userID,
	}

	messages, fetchWindowError := d.source.FetchWindow(ctx, channelID, windowStart, windowEnd)
	if fetchWindowError != nil {
		return fetchWindowError
	}
	texts := messageTexts(messages)
	if len(texts) == 0 {
		return &Models.NoContentError{Reason: "no messages since local midnight"}
	}

	result, summarizeError := d.summarizer.Summarize(ctx, texts)
	if summarizeError != nil {
		return summarizeError
	}

	formatted := PublishSummary.Format(result.Topic, result.Summary, result.ActionItems)
	_, postError := d.source.Post(ctx, request.Scope.ChannelID, formatted, "")
	return postError
}

// runShortcut resolves what the target message stands for (thread reply,
// thread parent, or standalone message) and posts the summary back to
// the resolved reply target.
func (d *Dispatcher) runShortcut(ctx context.Context, channelID, userID, messageID, threadRootID, inlineText string) error {
	resolution, resolveScopeError := d.resolveShortcutScope(ctx, channelID, messageID, threadRootID, inlineText)
	if resolveScopeError != nil {
		return resolveScopeError
	}

	request := Models.SummaryRequest{
		Scope:          resolution.Scope,
		RequestingUser: userID,
	}

	result, summarizeError := d.summarizer.Summarize(ctx, resolution.Texts)
	if summarizeError != nil {
		return summarizeError
	}

	formatted := PublishSummary.Format(result.Topic, result.Summary, result.ActionItems)
	_, postError := d.source.Post(ctx, request.Scope.ChannelID, formatted, resolution.ReplyTarget)
	return postError
}

// spawn runs one trigger's continuation in the background. The terminal
// outcome is always logged under a request id; failures additionally
// produce a best-effort ephemeral notice to the requester, since the
// original response path is already closed.
func (d *Dispatcher) spawn(trigger, channelID, userID string, work func(context.Context) error) {
	requestID := uuid.NewString()
	d.background.Add(1)

	go func() {
		defer d.background.Done()

		ctx := context.Background()
		workError := work(ctx)
		if workError == nil {
			log.Printf("Dispatch:spawn#Request %s (%s) completed", requestID, trigger)
			return
		}

		log.Printf("Dispatch:spawn#Request %s (%s) failed: %s", requestID, trigger, workError.Error())
		notice := UserFacingMessage(workError)
		if notifyError := d.source.PostEphemeral(ctx, channelID, userID, notice); notifyError != nil {
			log.Printf("Dispatch:spawn#Request %s could not deliver the failure notice: %s", requestID, notifyError.Error())
		}
	}()
}

// Wait blocks until every spawned background task has finished. Used by
// tests and by graceful shutdown.
func (d *Dispatcher) Wait() {
	d.background.Wait()
}

// UserFacingMessage maps an orchestration failure onto the one short
// notice the requester sees. Classification rides on the typed kinds the
// adapters attached, never on error text.
func UserFacingMessage(err error) string {
	var noContent *Models.NoContentError
	if errors.As(err, &noContent) {
		return "I couldn't find anything to summarize here."
	}

	var upstream *Models.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Kind {
		case Models.UpstreamPermission:
			if upstream.Code == "missing_scope" {
				return "I'm missing a Slack permission scope. Please reinstall the app with the required scopes."
			}
			return "I can't read that channel. Please add me with `/invite @Summariser` and try again."
		case Models.UpstreamAuth:
			return "My credentials were rejected upstream. Please rotate the bot token and reinstall the app."
		case Models.UpstreamRateLimit:
			return "The summarization service is at its limit right now. Please try again in a few minutes."
		}
		return fmt.Sprintf("Upstream error: %v", upstream.Err)
	}

	return "Something went wrong: " + err.Error()
}

func writeEphemeralAck(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
}
