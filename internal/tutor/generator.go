package tutor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nihao-labs/yuban/internal/conversation"
	"github.com/nihao-labs/yuban/internal/provider/groq"
)

const translationMarker = "english translation:"

// englishDefault is the placeholder used when the reply carries no
// translation line.
const englishDefault = "Translation not available."

// Fixed reply fallbacks.
const (
	fallbackHanzi   = "你好！"
	fallbackEnglish = "Hello!"

	apologyHanzi   = "抱歉，出现了技术问题。"
	apologyEnglish = "Sorry, there was a technical issue."
)

// Generator produces dual-language tutor replies.
type Generator struct {
	provider ChatProvider

	// historyWindow bounds how many recent turns are replayed into the
	// prompt.
	historyWindow int
}

// NewGenerator creates a reply generator. A historyWindow of zero or less
// falls back to 8.
func NewGenerator(provider ChatProvider, historyWindow int) *Generator {
	if historyWindow <= 0 {
		historyWindow = 8
	}
	return &Generator{provider: provider, historyWindow: historyWindow}
}

// Reply generates the tutor's next turn for userText given prior history.
// It never fails: provider errors degrade to a fixed apology pair and an
// unparseable reply degrades to a fixed greeting. Both returned strings are
// always non-empty.
func (g *Generator) Reply(ctx context.Context, userText string, history []conversation.Turn) (hanzi, english string) {
	summary := AnalyzeContext(history)

	messages := []groq.Message{{Role: "system", Content: systemPrompt(summary)}}
	messages = append(messages, g.historyMessages(history)...)
	messages = append(messages, groq.Message{Role: "user", Content: userText})

	slog.Debug("generating tutor reply",
		"messages", len(messages),
		"topics", strings.Join(summary.RecentTopics, ","),
		"style", summary.ConversationStyle)

	raw, err := g.provider.ChatCompletion(ctx, groq.ChatRequest{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		slog.Error("tutor reply generation failed", "error", err)
		return apologyHanzi, apologyEnglish
	}

	hanzi, english = parseReply(raw)
	if hanzi == "" {
		slog.Warn("tutor reply had no Mandarin content, using fallback greeting")
		return fallbackHanzi, fallbackEnglish
	}
	return hanzi, english
}

// historyMessages maps the bounded recent history onto alternating
// user/assistant chat messages. User lines carry their English rendering as
// a parenthetical to keep the model anchored; assistant lines replay Hanzi
// only.
func (g *Generator) historyMessages(history []conversation.Turn) []groq.Message {
	recent := history
	if len(recent) > g.historyWindow {
		recent = recent[len(recent)-g.historyWindow:]
	}

	msgs := make([]groq.Message, 0, len(recent))
	for _, turn := range recent {
		switch turn.Role {
		case conversation.RoleUser:
			content := turn.Hanzi
			if turn.English != "" {
				content += " (English: " + turn.English + ")"
			}
			msgs = append(msgs, groq.Message{Role: "user", Content: content})
		case conversation.RoleAssistant:
			msgs = append(msgs, groq.Message{Role: "assistant", Content: turn.Hanzi})
		}
	}
	return msgs
}

// systemPrompt builds the tutor persona instruction, enriched with the
// conversation summary when one exists.
func systemPrompt(summary Summary) string {
	var sb strings.Builder
	sb.WriteString("You are a friendly Mandarin Chinese tutor. ")

	switch {
	case summary.MessageCount == 0:
		sb.WriteString("This is the start of a new conversation. Greet the user warmly in Chinese. ")
	case summary.ConversationStyle == "greeting":
		sb.WriteString("Continue the greeting conversation naturally. ")
	default:
		topics := strings.Join(summary.RecentTopics, ", ")
		if topics == "" {
			topics = "general conversation"
		}
		sb.WriteString("Continue the conversation naturally. Recent topics have included: " + topics + ". ")
	}

	if summary.LastUserMessage != nil {
		sb.WriteString("The user just said: \"" + summary.LastUserMessage.English + "\". Respond appropriately to continue the conversation flow. ")
	}

	sb.WriteString("Respond in simple Mandarin Chinese (1-2 short sentences). ")
	sb.WriteString("Make your response relevant to what the user said and the conversation context. ")
	sb.WriteString("After your Mandarin response, on a new line, provide the English translation of your Mandarin response, like this: English translation: [Your English translation here]")

	return sb.String()
}

// parseReply splits the raw model output into Mandarin and English parts.
//
// Lines before the first line containing the "english translation:" marker
// accumulate (space-joined) as the Mandarin response; the marker line's text
// after its first colon is the English translation, preserved verbatim even
// when it contains further colons. If nothing accumulated, the first line is
// taken as Mandarin and the second line is consulted for the marker. An
// empty english part keeps the default placeholder.
func parseReply(raw string) (hanzi, english string) {
	english = englishDefault

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var mandarinParts []string
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), translationMarker) {
			english = afterFirstColon(line)
			break
		}
		mandarinParts = append(mandarinParts, line)
	}
	hanzi = strings.Join(mandarinParts, " ")

	if hanzi == "" && len(lines) > 0 {
		hanzi = lines[0]
		if len(lines) > 1 && strings.Contains(strings.ToLower(lines[1]), translationMarker) {
			english = afterFirstColon(lines[1])
		}
	}

	if english == "" {
		english = englishDefault
	}
	return hanzi, english
}

func afterFirstColon(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return strings.TrimSpace(line)
}
