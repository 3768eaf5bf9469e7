package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihao-labs/yuban/internal/conversation"
	"github.com/nihao-labs/yuban/internal/provider/groq"
)

// fakeProvider records the last request and returns a canned reply or error.
type fakeProvider struct {
	reply   string
	err     error
	lastReq groq.ChatRequest
	calls   int
}

func (f *fakeProvider) ChatCompletion(_ context.Context, req groq.ChatRequest) (string, error) {
	f.calls++
	f.lastReq = req
	return f.reply, f.err
}

func TestParseReplyMarkerLine(t *testing.T) {
	hanzi, english := parseReply("你好，你好吗？\nEnglish translation: Hello, how are you?")
	assert.Equal(t, "你好，你好吗？", hanzi)
	assert.Equal(t, "Hello, how are you?", english)
}

func TestParseReplyNoMarker(t *testing.T) {
	hanzi, english := parseReply("你好")
	assert.Equal(t, "你好", hanzi)
	assert.Equal(t, "Translation not available.", english)
}

func TestParseReplyMultilineMandarin(t *testing.T) {
	hanzi, english := parseReply("今天天气很好。\n我们出去走走吧。\nenglish translation: The weather is nice today. Let's go for a walk.")
	assert.Equal(t, "今天天气很好。 我们出去走走吧。", hanzi)
	assert.Equal(t, "The weather is nice today. Let's go for a walk.", english)
}

func TestParseReplyColonPreservedAfterMarker(t *testing.T) {
	_, english := parseReply("你好！\nEnglish translation: Hello: nice to meet you")
	assert.Equal(t, "Hello: nice to meet you", english)
}

func TestParseReplyMarkerFirstLine(t *testing.T) {
	// Nothing accumulates before the marker, so the tie-break reuses the
	// first line verbatim as the Mandarin part.
	hanzi, english := parseReply("English translation: hi")
	assert.Equal(t, "English translation: hi", hanzi)
	assert.Equal(t, "hi", english)
}

func TestParseReplyBlankLinesSkipped(t *testing.T) {
	hanzi, english := parseReply("\n\n你好！\n\nEnglish translation: Hello!\n")
	assert.Equal(t, "你好！", hanzi)
	assert.Equal(t, "Hello!", english)
}

func TestReplyHappyPath(t *testing.T) {
	p := &fakeProvider{reply: "你好，你好吗？\nEnglish translation: Hello, how are you?"}
	g := NewGenerator(p, 8)

	hanzi, english := g.Reply(context.Background(), "你好", nil)
	assert.Equal(t, "你好，你好吗？", hanzi)
	assert.Equal(t, "Hello, how are you?", english)

	require.NotEmpty(t, p.lastReq.Messages)
	assert.Equal(t, "system", p.lastReq.Messages[0].Role)
	assert.Equal(t, "你好", p.lastReq.Messages[len(p.lastReq.Messages)-1].Content)
	assert.InDelta(t, 0.7, p.lastReq.Temperature, 0.001)
	assert.Equal(t, 1024, p.lastReq.MaxTokens)
}

func TestReplyProviderErrorFallsBackToApology(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	g := NewGenerator(p, 8)

	hanzi, english := g.Reply(context.Background(), "你好", nil)
	assert.Equal(t, "抱歉，出现了技术问题。", hanzi)
	assert.Equal(t, "Sorry, there was a technical issue.", english)
}

func TestReplyEmptyOutputFallsBackToGreeting(t *testing.T) {
	p := &fakeProvider{reply: "   \n  "}
	g := NewGenerator(p, 8)

	hanzi, english := g.Reply(context.Background(), "你好", nil)
	assert.Equal(t, "你好！", hanzi)
	assert.Equal(t, "Hello!", english)
}

func TestReplyHistoryWindowBounded(t *testing.T) {
	var history []conversation.Turn
	for i := 0; i < 20; i++ {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		history = append(history, conversation.Turn{Role: role, Hanzi: "句子", English: "sentence"})
	}

	p := &fakeProvider{reply: "好。\nEnglish translation: OK."}
	g := NewGenerator(p, 8)
	g.Reply(context.Background(), "你好", history)

	// system + 8 history turns + current utterance
	assert.Len(t, p.lastReq.Messages, 10)
}

func TestHistoryMessagesRoleMapping(t *testing.T) {
	g := NewGenerator(&fakeProvider{}, 8)
	msgs := g.historyMessages([]conversation.Turn{
		{Role: conversation.RoleUser, Hanzi: "你好", English: "Hello"},
		{Role: conversation.RoleAssistant, Hanzi: "你好！有什么我可以帮忙的吗？", English: "Hi! How can I help?"},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "你好 (English: Hello)", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "你好！有什么我可以帮忙的吗？", msgs[1].Content)
}

func TestSystemPromptNewConversation(t *testing.T) {
	prompt := systemPrompt(Summary{})
	assert.Contains(t, prompt, "start of a new conversation")
	assert.Contains(t, prompt, "English translation:")
}

func TestSystemPromptWithTopics(t *testing.T) {
	prompt := systemPrompt(Summary{
		MessageCount:      6,
		ConversationStyle: "casual",
		RecentTopics:      []string{"food", "weather"},
	})
	assert.Contains(t, prompt, "food, weather")
}
