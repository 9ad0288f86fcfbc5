package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmInteraction "github.com/FACorreiaa/tripwise/internal/api/llm_interaction"
)

type fakeAssistant struct {
	llmInteraction.LlmInteractionService
	reply string
	err   error
	asked []string
}

func (f *fakeAssistant) AskPlain(_ context.Context, message string) (string, error) {
	f.asked = append(f.asked, message)
	return f.reply, f.err
}

func textMessage(text string) *tgbotapi.Message {
	m := &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 42}, Text: text}
	if strings.HasPrefix(text, "/") {
		end := strings.IndexByte(text, ' ')
		if end < 0 {
			end = len(text)
		}
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return m
}

func TestAnswer(t *testing.T) {
	t.Run("StartGreets", func(t *testing.T) {
		svc := &fakeAssistant{}
		assert.Equal(t, greeting, answer(context.Background(), svc, textMessage("/start")))
		assert.Empty(t, svc.asked)
	})

	t.Run("AsksTheAssistant", func(t *testing.T) {
		svc := &fakeAssistant{reply: "Try Siargao."}
		assert.Equal(t, "Try Siargao.", answer(context.Background(), svc, textMessage("  where to surf?  ")))
		assert.Equal(t, []string{"where to surf?"}, svc.asked)
	})

	t.Run("ReportsErrorsAsText", func(t *testing.T) {
		svc := &fakeAssistant{err: errors.New("db down")}
		assert.Equal(t, "⚠️ Chat error: db down", answer(context.Background(), svc, textMessage("hello")))
	})
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", maxMessageRunes))
	assert.Equal(t, []string{""}, splitMessage("", maxMessageRunes))

	long := strings.Repeat("é", maxMessageRunes*2+10)
	chunks := splitMessage(long, maxMessageRunes)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), maxMessageRunes)
	}
	assert.Equal(t, long, strings.Join(chunks, ""))

	text := "Day 1: beach\nDay 2: caves\nDay 3: falls"
	chunks = splitMessage(text, 20)
	assert.Equal(t, []string{"Day 1: beach\n", "Day 2: caves\n", "Day 3: falls"}, chunks)
}
