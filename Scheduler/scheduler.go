package Scheduler

import (
	"context"
	"log"
	"strings"
	"time"

	"slack-channel-summariser/Models"
	"slack-channel-summariser/PublishSummary"
	"slack-channel-summariser/SlackAdapter"

	"github.com/robfig/cron/v3"
)

// Scheduler posts a recurring digest of the default channel: everything
// since UTC midnight, summarized and posted publicly. It runs only when
// a cron schedule is configured.
type Scheduler struct {
	source         Models.MessageSource
	summarizer     Models.Summarizer
	defaultChannel string
	schedule       string

	cron *cron.Cron
	now  func() time.Time
}

func New(source Models.MessageSource, summarizer Models.Summarizer, defaultChannel, schedule string) *Scheduler {
	return &Scheduler{
		source:         source,
		summarizer:     summarizer,
		defaultChannel: defaultChannel,
		schedule:       schedule,
		now:            time.Now,
	}
}

func (s *Scheduler) Start() error {
	s.cron = cron.New()
	_, addFuncError := s.cron.AddFunc(s.schedule, func() {
		if digestError := s.RunDigest(context.Background()); digestError != nil {
			log.Printf("Scheduler:Start#Digest run failed: %s", digestError.Error())
		}
	})
	if addFuncError != nil {
		return addFuncError
	}

	s.cron.Start()
	log.Printf("[Scheduler] Digest scheduled (%s) for #%s", s.schedule, s.defaultChannel)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunDigest performs one digest pass. An empty day is not an error, it
// just posts nothing.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	channelID, resolveChannelError := s.source.ResolveChannelRef(ctx, s.defaultChannel)
	if resolveChannelError != nil {
		return resolveChannelError
	}

	windowStart, windowEnd := SlackAdapter.TodayWindow(s.now(), 0)

	messages, fetchWindowError := s.source.FetchWindow(ctx, channelID, windowStart, windowEnd)
	if fetchWindowError != nil {
		return fetchWindowError
	}

	texts := make([]string, 0, len(messages))
	for _, message := range messages {
		if strings.TrimSpace(message.Text) == "" {
			continue
		}
		texts = append(texts, message.Text)
	}
	if len(texts) == 0 {
		log.Printf("[Scheduler] No messages to digest in #%s today", s.defaultChannel)
		return nil
	}

	result, summarizeError := s.summarizer.Summarize(ctx, texts)
	if summarizeError != nil {
		return summarizeError
	}

	formatted := PublishSummary.Format(result.Topic, result.Summary, result.ActionItems)
	_, postError := s.source.Post(ctx, channelID, formatted, "")
	return postError
}
