// Command wisebot answers Telegram messages with the TripWise assistant.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	appLogger "github.com/FACorreiaa/tripwise/app/logger"
	"github.com/FACorreiaa/tripwise/config"
	llmInteraction "github.com/FACorreiaa/tripwise/internal/api/llm_interaction"
	"github.com/FACorreiaa/tripwise/internal/container"
)

const greeting = "🌴 Hi! I'm WiseBot. Ask me anything about the islands, where to stay or what to do."

// maxMessageRunes is Telegram's limit for a single text message.
const maxMessageRunes = 4096

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}
	logger := appLogger.New(cfg.Mode)
	slog.SetDefault(logger)

	if cfg.Telegram.Token == "" {
		logger.Error("Telegram token is not configured (TELEGRAM_TOKEN)")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := container.NewContainer(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to build application container", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("Failed to initialize telegram bot", slog.Any("error", err))
		os.Exit(1)
	}
	bot.Debug = cfg.Telegram.Debug
	logger.Info("WiseBot started", slog.String("username", bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		reply := answer(ctx, c.LLMService, update.Message)
		for i, chunk := range splitMessage(reply, maxMessageRunes) {
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, chunk)
			if i == 0 {
				msg.ReplyToMessageID = update.Message.MessageID
			}
			if _, err := bot.Send(msg); err != nil {
				logger.Warn("Failed to send telegram reply",
					slog.Int64("chat_id", update.Message.Chat.ID), slog.Int("chunk", i), slog.Any("error", err))
				break
			}
		}
	}
	logger.Info("WiseBot stopped")
}

func answer(ctx context.Context, svc llmInteraction.LlmInteractionService, m *tgbotapi.Message) string {
	if m.IsCommand() && m.Command() == "start" {
		return greeting
	}
	reply, err := svc.AskPlain(ctx, strings.TrimSpace(m.Text))
	if err != nil {
		slog.ErrorContext(ctx, "Chat failed", slog.Int64("chat_id", m.Chat.ID), slog.Any("error", err))
		return "⚠️ Chat error: " + err.Error()
	}
	return reply
}

// splitMessage cuts text into chunks of at most limit runes, preferring to
// break after a newline in the second half of a chunk.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
