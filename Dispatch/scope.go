package Dispatch

import (
	"context"
	"strings"

	"slack-channel-summariser/Models"
)

// ScopeResolution is the terminal state of shortcut scope resolution: a
// non-empty text batch plus the message the summary should reply to
// (the thread root, or the message itself when standalone).
type ScopeResolution struct {
	Scope       Models.Scope
	Texts       []string
	ReplyTarget string
}

// resolveShortcutScope decides what a message shortcut should
// summarize. In order: an explicit thread root wins; a message with
// replies is summarized as the thread it roots; a message with inline
// text stands alone; otherwise the message is fetched from history as a
// last resort.
func (d *Dispatcher) resolveShortcutScope(ctx context.Context, channelID, messageID, threadRootID, inlineText string) (ScopeResolution, error) {
	if threadRootID != "" {
		messages, fetchThreadError := d.source.FetchThread(ctx, channelID, threadRootID)
		if fetchThreadError != nil {
			return ScopeResolution{}, fetchThreadError
		}
		return threadResolution(channelID, threadRootID, messages)
	}

	replies, fetchThreadError := d.source.FetchThread(ctx, channelID, messageID)
	if fetchThreadError != nil {
		return ScopeResolution{}, fetchThreadError
	}
	if len(replies) > 1 {
		// root plus at least one reply: the target is a thread parent
		return threadResolution(channelID, messageID, replies)
	}

	if strings.TrimSpace(inlineText) != "" {
		return ScopeResolution{
			Scope:       Models.SingleMessageScope(channelID, messageID),
			Texts:       []string{inlineText},
			ReplyTarget: messageID,
		}, nil
	}

	fetched, fetchSingleError := d.source.FetchSingleMessage(ctx, channelID, messageID)
	if fetchSingleError != nil {
		return ScopeResolution{}, fetchSingleError
	}
	if fetched == nil || strings.TrimSpace(fetched.Text) == "" {
		return ScopeResolution{}, &Models.NoContentError{Reason: "message has no text"}
	}
	return ScopeResolution{
		Scope:       Models.SingleMessageScope(channelID, messageID),
		Texts:       []string{fetched.Text},
		ReplyTarget: messageID,
	}, nil
}

func threadResolution(channelID, rootID string, messages []Models.Message) (ScopeResolution, error) {
	texts := messageTexts(messages)
	if len(texts) == 0 {
		return ScopeResolution{}, &Models.NoContentError{Reason: "empty thread"}
	}
	return ScopeResolution{
		Scope:       Models.ThreadScope(channelID, rootID),
		Texts:       texts,
		ReplyTarget: rootID,
	}, nil
}

// messageTexts keeps source order and drops messages without text
// (joins, attachments-only posts).
func messageTexts(messages []Models.Message) []string {
	texts := make([]string, 0, len(messages))
	for _, message := range messages {
		if strings.TrimSpace(message.Text) == "" {
			continue
		}
		texts = append(texts, message.Text)
	}
	return texts
}
