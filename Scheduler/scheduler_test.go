package Scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"slack-channel-summariser/Models"
)

type digestSource struct {
	window   []Models.Message
	channels []Models.Channel
	posted   []string
	postedTo []string
}

func (s *digestSource) FetchWindow(_ context.Context, _ string, _, _ time.Time) ([]Models.Message, error) {
	return s.window, nil
}

func (s *digestSource) FetchThread(_ context.Context, _, _ string) ([]Models.Message, error) {
	return nil, nil
}

func (s *digestSource) FetchSingleMessage(_ context.Context, _, _ string) (*Models.Message, error) {
	return nil, nil
}

func (s *digestSource) ResolveTimezoneOffset(_ context.Context, _ string) int {
	return 0
}

func (s *digestSource) Post(_ context.Context, channelID, text, _ string) (string, error) {
	s.posted = append(s.posted, text)
	s.postedTo = append(s.postedTo, channelID)
	return "1.000000", nil
}

func (s *digestSource) PostEphemeral(_ context.Context, _, _, _ string) error {
	return nil
}

func (s *digestSource) ListChannels(_ context.Context) ([]Models.Channel, error) {
	return s.channels, nil
}

func (s *digestSource) ResolveChannelRef(_ context.Context, ref string) (string, error) {
	ref = strings.TrimPrefix(ref, "#")
	for _, channel := range s.channels {
		if channel.Name == ref {
			return channel.ID, nil
		}
	}
	return "", &Models.NoContentError{Reason: "no channel named " + ref}
}

type digestSummarizer struct {
	result Models.SummaryResult
	called bool
}

func (s *digestSummarizer) Summarize(_ context.Context, _ []string) (Models.SummaryResult, error) {
	s.called = true
	return s.result, nil
}

func TestRunDigestPostsToDefaultChannel(t *testing.T) {
	source := &digestSource{
		window:   []Models.Message{{ID: "1.000000", Text: "deployed the fix"}},
		channels: []Models.Channel{{ID: "C7", Name: "general"}},
	}
	summarizer := &digestSummarizer{
		result: Models.SummaryResult{Topic: "Daily Digest", Summary: "A fix was deployed."},
	}
	s := New(source, summarizer, "general", "0 18 * * *")

	if digestError := s.RunDigest(context.Background()); digestError != nil {
		t.Fatalf("RunDigest failed: %v", digestError)
	}
	if len(source.posted) != 1 {
		t.Fatalf("got %d posts, want 1", len(source.posted))
	}
	if source.postedTo[0] != "C7" {
		t.Fatalf("posted to %q, want C7", source.postedTo[0])
	}
	if !strings.Contains(source.posted[0], "Daily Digest") {
		t.Fatalf("digest text missing the topic: %q", source.posted[0])
	}
}

func TestRunDigestSkipsEmptyDay(t *testing.T) {
	source := &digestSource{
		channels: []Models.Channel{{ID: "C7", Name: "general"}},
	}
	summarizer := &digestSummarizer{}
	s := New(source, summarizer, "general", "0 18 * * *")

	if digestError := s.RunDigest(context.Background()); digestError != nil {
		t.Fatalf("RunDigest failed: %v", digestError)
	}
	if summarizer.called {
		t.Fatal("summarizer must not run on an empty day")
	}
	if len(source.posted) != 0 {
		t.Fatalf("nothing should be posted on an empty day, got %v", source.posted)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(&digestSource{}, &digestSummarizer{}, "general", "not a cron spec")
	defer s.Stop()

	if startError := s.Start(); startError == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}
}
