package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihao-labs/yuban/internal/conversation"
)

func userTurn(hanzi, english string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleUser, Hanzi: hanzi, English: english}
}

func assistantTurn(hanzi string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleAssistant, Hanzi: hanzi, English: "..."}
}

func TestAnalyzeContextEmpty(t *testing.T) {
	sum := AnalyzeContext(nil)
	assert.Equal(t, "greeting", sum.ConversationStyle)
	assert.Zero(t, sum.MessageCount)
	assert.Nil(t, sum.LastUserMessage)
	assert.Empty(t, sum.RecentTopics)
}

func TestAnalyzeContextTopics(t *testing.T) {
	history := []conversation.Turn{
		userTurn("我想吃饭", "I want to eat"),
		assistantTurn("好的，你想吃什么菜？"),
		userTurn("今天天气很热", "The weather is hot today"),
		assistantTurn("是的，今天很热。"),
	}

	sum := AnalyzeContext(history)
	assert.Contains(t, sum.RecentTopics, "food")
	assert.Contains(t, sum.RecentTopics, "weather")
	assert.Equal(t, 4, sum.MessageCount)

	require.NotNil(t, sum.LastUserMessage)
	assert.Equal(t, "今天天气很热", sum.LastUserMessage.Hanzi)
	assert.Contains(t, sum.ContextSummary, "food")
}

func TestAnalyzeContextStyle(t *testing.T) {
	short := []conversation.Turn{userTurn("你好", "Hello")}
	assert.Equal(t, "greeting", AnalyzeContext(short).ConversationStyle)

	polite := []conversation.Turn{
		userTurn("你好", "Hello"),
		assistantTurn("你好！"),
		userTurn("谢谢你", "Thank you"),
	}
	assert.Equal(t, "polite", AnalyzeContext(polite).ConversationStyle)

	casual := []conversation.Turn{
		userTurn("我在工作", "I am working"),
		assistantTurn("工作顺利吗？"),
		userTurn("很顺利", "Going well"),
	}
	assert.Equal(t, "casual", AnalyzeContext(casual).ConversationStyle)
}

func TestAnalyzeContextWindowIsTen(t *testing.T) {
	var history []conversation.Turn
	// An old food mention followed by ten topic-free turns: the food tag
	// must fall outside the scanning window.
	history = append(history, userTurn("我想吃饭", "I want to eat"))
	for i := 0; i < 10; i++ {
		history = append(history, assistantTurn("嗯。"))
	}

	sum := AnalyzeContext(history)
	assert.NotContains(t, sum.RecentTopics, "food")
	assert.Equal(t, 11, sum.MessageCount)
}
