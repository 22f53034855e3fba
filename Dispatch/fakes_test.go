package Dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"slack-channel-summariser/Models"
)

type postedMessage struct {
	channelID string
	userID    string
	text      string
	threadID  string
}

// fakeSource is the in-memory Models.MessageSource used across the
// dispatcher tests.
type fakeSource struct {
	mu sync.Mutex

	window    []Models.Message
	windowErr error

	threads   map[string][]Models.Message
	threadErr error

	singles  map[string]*Models.Message
	channels []Models.Channel
	tzOffset int

	posted     []postedMessage
	ephemerals []postedMessage
}

func (f *fakeSource) FetchWindow(_ context.Context, _ string, _, _ time.Time) ([]Models.Message, error) {
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	return f.window, nil
}

func (f *fakeSource) FetchThread(_ context.Context, _, rootID string) ([]Models.Message, error) {
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	return f.threads[rootID], nil
}

func (f *fakeSource) FetchSingleMessage(_ context.Context, _, messageID string) (*Models.Message, error) {
	return f.singles[messageID], nil
}

func (f *fakeSource) ResolveTimezoneOffset(_ context.Context, _ string) int {
	return f.tzOffset
}

func (f *fakeSource) Post(_ context.Context, channelID, text, threadID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, postedMessage{channelID: channelID, text: text, threadID: threadID})
	return "999.000001", nil
}

func (f *fakeSource) PostEphemeral(_ context.Context, channelID, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ephemerals = append(f.ephemerals, postedMessage{channelID: channelID, userID: userID, text: text})
	return nil
}

func (f *fakeSource) ListChannels(_ context.Context) ([]Models.Channel, error) {
	return f.channels, nil
}

func (f *fakeSource) ResolveChannelRef(_ context.Context, ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	for _, channel := range f.channels {
		if channel.Name == ref {
			return channel.ID, nil
		}
	}
	for _, channel := range f.channels {
		if channel.ID == ref {
			return channel.ID, nil
		}
	}
	return "", &Models.NoContentError{Reason: "no channel named " + ref}
}

func (f *fakeSource) postedMessages() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedMessage(nil), f.posted...)
}

func (f *fakeSource) ephemeralNotices() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedMessage(nil), f.ephemerals...)
}

// fakeSummarizer records the batches it was given. When gate is set,
// Summarize blocks until the gate closes, which lets tests observe the
// acknowledgment happening before the background work.
type fakeSummarizer struct {
	mu      sync.Mutex
	gate    chan struct{}
	batches [][]string
	result  Models.SummaryResult
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, texts []string) (Models.SummaryResult, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.batches = append(f.batches, texts)
	f.mu.Unlock()
	if f.err != nil {
		return Models.SummaryResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeSummarizer) seenBatches() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.batches...)
}
