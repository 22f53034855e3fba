package Models

import (
	"context"
	"time"
)

// Message is one chat message as returned by the source adapter.
// ThreadID is set only when the message is a reply inside a thread.
type Message struct {
	ID       string
	Author   string
	Text     string
	ThreadID string
}

// Channel is the id/name pair needed to resolve channel references.
type Channel struct {
	ID   string
	Name string
}

type ScopeKind int

const (
	ScopeChannel ScopeKind = iota
	ScopeThread
	ScopeSingleMessage
)

// Scope is the resolved set of messages a trigger should summarize:
// a channel time window, a thread, or a single message.
type Scope struct {
	Kind        ScopeKind
	ChannelID   string
	WindowStart time.Time
	WindowEnd   time.Time
	RootID      string
	MessageID   string
}

func ChannelScope(channelID string, start, end time.Time) Scope {
	return Scope{Kind: ScopeChannel, ChannelID: channelID, WindowStart: start, WindowEnd: end}
}

func ThreadScope(channelID, rootID string) Scope {
	return Scope{Kind: ScopeThread, ChannelID: channelID, RootID: rootID}
}

func SingleMessageScope(channelID, messageID string) Scope {
	return Scope{Kind: ScopeSingleMessage, ChannelID: channelID, MessageID: messageID}
}

// SummaryRequest is built once per trigger and never reused.
type SummaryRequest struct {
	Scope          Scope
	RequestingUser string
}

// SummaryResult is the structured output of one summarization call.
// Immutable after creation.
type SummaryResult struct {
	Topic       string
	Summary     string
	ActionItems []string
}

// MessageSource is the port over the messaging platform. The Slack
// implementation lives in SlackAdapter; tests use in-memory fakes.
type MessageSource interface {
	FetchWindow(ctx context.Context, channelID string, start, end time.Time) ([]Message, error)
	FetchThread(ctx context.Context, channelID, rootID string) ([]Message, error)
	FetchSingleMessage(ctx context.Context, channelID, messageID string) (*Message, error)
	ResolveTimezoneOffset(ctx context.Context, userID string) int
	Post(ctx context.Context, channelID, text, threadID string) (string, error)
	PostEphemeral(ctx context.Context, channelID, userID, text string) error
	ListChannels(ctx context.Context) ([]Channel, error)
	ResolveChannelRef(ctx context.Context, ref string) (string, error)
}

// Summarizer is the port over the completion API. Both the Gemini and the
// Anthropic backends in SummarizeMessages satisfy it.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (SummaryResult, error)
}
