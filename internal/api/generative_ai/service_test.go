package generativeAI

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/tripwise/config"
)

func TestNewAIClientRequiresKey(t *testing.T) {
	_, err := NewAIClient(context.Background(), config.LLMConfig{Model: "gemini-2.5-flash"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.EqualError(t, err, "llm api key is not configured")
}

func TestUnavailableOracle(t *testing.T) {
	cause := errors.New("llm api key is not configured")
	var oracle Oracle = UnavailableOracle{Err: cause}

	text, err := oracle.GenerateContent(context.Background(), "Plan three days in Bohol")
	assert.Empty(t, text)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "language model unavailable: llm api key is not configured")
}
