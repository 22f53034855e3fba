package SlackAdapter

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"slack-channel-summariser/Models"

	"github.com/slack-go/slack"
)

type Message = Models.Message
type Channel = Models.Channel

// messagePageLimit caps every fetch call at one upstream page. The
// window a single trigger can cover is bounded by this constant.
const messagePageLimit = 200

const channelListLimit = 1000

// Adapter wraps the Slack Web API behind the Models.MessageSource port.
// It classifies every failure into a typed Models.UpstreamError at the
// call site, using Slack's structured error codes.
type Adapter struct {
	client *slack.Client
}

func New(client *slack.Client) *Adapter {
	return &Adapter{client: client}
}

// FetchWindow returns the channel messages inside [start, end], oldest
// first. Slack returns history newest first, so the page is reversed
// before mapping.
func (a *Adapter) FetchWindow(ctx context.Context, channelID string, start, end time.Time) ([]Message, error) {
	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    slackTimestamp(start),
		Latest:    slackTimestamp(end),
		Inclusive: true,
		Limit:     messagePageLimit,
	}

	history, getHistoryError := a.client.GetConversationHistoryContext(ctx, params)
	if getHistoryError != nil {
		log.Printf("SlackAdapter:FetchWindow#Error fetching channel history: %s", getHistoryError.Error())
		return nil, classify("conversations.history", getHistoryError)
	}

	messages := make([]Message, 0, len(history.Messages))
	for i := len(history.Messages) - 1; i >= 0; i-- {
		messages = append(messages, toModel(history.Messages[i]))
	}
	return messages, nil
}

// FetchThread returns the full thread rooted at rootID, root first.
// Slack already orders replies oldest first.
func (a *Adapter) FetchThread(ctx context.Context, channelID, rootID string) ([]Message, error) {
	params := &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: rootID,
		Limit:     messagePageLimit,
	}

	replies, _, _, getRepliesError := a.client.GetConversationRepliesContext(ctx, params)
	if getRepliesError != nil {
		log.Printf("SlackAdapter:FetchThread#Error fetching thread replies: %s", getRepliesError.Error())
		return nil, classify("conversations.replies", getRepliesError)
	}

	messages := make([]Message, 0, len(replies))
	for _, reply := range replies {
		messages = append(messages, toModel(reply))
	}
	return messages, nil
}

// FetchSingleMessage looks up one message by its timestamp id. Returns
// nil without an error when the message does not exist.
func (a *Adapter) FetchSingleMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    messageID,
		Inclusive: true,
		Limit:     1,
	}

	history, getHistoryError := a.client.GetConversationHistoryContext(ctx, params)
	if getHistoryError != nil {
		log.Printf("SlackAdapter:FetchSingleMessage#Error fetching message: %s", getHistoryError.Error())
		return nil, classify("conversations.history", getHistoryError)
	}

	if len(history.Messages) == 0 || history.Messages[0].Timestamp != messageID {
		return nil, nil
	}
	found := toModel(history.Messages[0])
	return &found, nil
}

// ResolveTimezoneOffset returns the user's timezone offset in seconds.
// Best effort: any failure degrades to 0 (UTC) rather than propagating.
func (a *Adapter) ResolveTimezoneOffset(ctx context.Context, userID string) int {
	user, getUserError := a.client.GetUserInfoContext(ctx, userID)
	if getUserError != nil {
		log.Printf("SlackAdapter:ResolveTimezoneOffset#Falling back to UTC for user %s: %s", userID, getUserError.Error())
		return 0
	}
	return user.TZOffset
}

// Post sends text to a channel, threaded under threadID when given, and
// returns the posted message timestamp.
func (a *Adapter) Post(ctx context.Context, channelID, text, threadID string) (string, error) {
	options := []slack.MsgOption{
		slack.MsgOptionText(text, false),
		slack.MsgOptionPostMessageParameters(slack.PostMessageParameters{
			UnfurlLinks: false,
			UnfurlMedia: false,
		}),
	}
	if threadID != "" {
		options = append(options, slack.MsgOptionTS(threadID))
	}

	_, postedTimestamp, postMessageError := a.client.PostMessageContext(ctx, channelID, options...)
	if postMessageError != nil {
		log.Printf("SlackAdapter:Post#Error posting message: %s", postMessageError.Error())
		return "", classify("chat.postMessage", postMessageError)
	}
	return postedTimestamp, nil
}

// PostEphemeral sends a requester-only notice that is not persisted in
// channel history.
func (a *Adapter) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	_, postEphemeralError := a.client.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false))
	if postEphemeralError != nil {
		log.Printf("SlackAdapter:PostEphemeral#Error posting ephemeral notice: %s", postEphemeralError.Error())
		return classify("chat.postEphemeral", postEphemeralError)
	}
	return nil
}

// ListChannels enumerates the channels the bot token can already see.
func (a *Adapter) ListChannels(ctx context.Context) ([]Channel, error) {
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           channelListLimit,
		Types:           []string{"public_channel", "private_channel"},
	}

	conversations, _, listChannelsError := a.client.GetConversationsContext(ctx, params)
	if listChannelsError != nil {
		log.Printf("SlackAdapter:ListChannels#Error listing channels: %s", listChannelsError.Error())
		return nil, classify("conversations.list", listChannelsError)
	}

	channels := make([]Channel, 0, len(conversations))
	for _, conversation := range conversations {
		channels = append(channels, Channel{ID: conversation.ID, Name: conversation.Name})
	}
	return channels, nil
}

// ResolveChannelRef turns "#general", "general" or a raw channel id into
// a channel id. Name matching is exact and case-sensitive; the first
// match wins, duplicate names are not disambiguated.
func (a *Adapter) ResolveChannelRef(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return "", &Models.NoContentError{Reason: "empty channel reference"}
	}

	channels, listChannelsError := a.ListChannels(ctx)
	if listChannelsError != nil {
		return "", listChannelsError
	}

	for _, channel := range channels {
		if channel.Name == ref {
			return channel.ID, nil
		}
	}
	for _, channel := range channels {
		if channel.ID == ref {
			return channel.ID, nil
		}
	}
	return "", &Models.NoContentError{Reason: "no channel named " + ref}
}

func toModel(message slack.Message) Message {
	threadID := message.ThreadTimestamp
	if threadID == message.Timestamp {
		// a thread parent carries its own ts as thread_ts; only real
		// replies keep a ThreadID
		threadID = ""
	}
	return Message{
		ID:       message.Timestamp,
		Author:   message.User,
		Text:     message.Text,
		ThreadID: threadID,
	}
}

// classify maps a slack-go error onto a typed UpstreamError using the
// structured error code Slack returned.
func classify(op string, err error) error {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return Models.NewUpstreamError(Models.UpstreamRateLimit, op, "ratelimited", err)
	}

	code := err.Error()
	var slackError slack.SlackErrorResponse
	if errors.As(err, &slackError) {
		code = slackError.Err
	}

	switch code {
	case "not_in_channel", "channel_not_found", "missing_scope", "restricted_action":
		return Models.NewUpstreamError(Models.UpstreamPermission, op, code, err)
	case "invalid_auth", "not_authed", "token_revoked", "token_expired", "account_inactive":
		return Models.NewUpstreamError(Models.UpstreamAuth, op, code, err)
	case "ratelimited", "rate_limited":
		return Models.NewUpstreamError(Models.UpstreamRateLimit, op, code, err)
	default:
		return Models.NewUpstreamError(Models.UpstreamGeneric, op, "", err)
	}
}
