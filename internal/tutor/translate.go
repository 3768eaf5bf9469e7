package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nihao-labs/yuban/internal/provider/groq"
)

// Fixed translation fallbacks. Translation failures are never fatal — the
// caller always receives a usable English string.
const (
	translationEmptyInput  = "No input to translate."
	translationEmptyResult = "Could not translate."
	translationUnavailable = "Translation unavailable."
)

// ChatProvider is the slice of the Groq client the tutor needs. It exists
// so tests can substitute a fake without a network.
type ChatProvider interface {
	ChatCompletion(ctx context.Context, req groq.ChatRequest) (string, error)
}

// Translate asks the provider for a literal English translation of Mandarin
// text. Empty input short-circuits without a provider call; provider errors
// degrade to a fixed placeholder.
func Translate(ctx context.Context, provider ChatProvider, text string) string {
	if strings.TrimSpace(text) == "" {
		return translationEmptyInput
	}

	prompt := fmt.Sprintf(
		"Translate the following Mandarin Chinese text to English, providing only the English translation: %q",
		text,
	)

	translation, err := provider.ChatCompletion(ctx, groq.ChatRequest{
		Messages:    []groq.Message{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		slog.Error("translation failed", "error", err)
		return translationUnavailable
	}

	translation = stripTranslationLabel(translation)
	if translation == "" {
		return translationEmptyResult
	}
	return translation
}

// stripTranslationLabel removes a leading "English translation:" label,
// case-insensitively, splitting on the first colon only.
func stripTranslationLabel(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "english translation:") {
		if idx := strings.Index(s, ":"); idx >= 0 {
			s = s[idx+1:]
		}
	}
	return strings.TrimSpace(s)
}
