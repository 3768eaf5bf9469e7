// Package tutor builds prompts for, calls, and parses replies from the
// chat-completion provider: literal translation of user utterances, topic
// analysis of recent history, and the dual-language tutor reply itself.
package tutor

import (
	"strings"

	"github.com/nihao-labs/yuban/internal/conversation"
)

// Summary is a lightweight view of recent conversation used to bias the
// tutor's system prompt. It is best-effort enrichment: a zero-value Summary
// is always a valid input to prompt generation.
type Summary struct {
	RecentTopics      []string
	ConversationStyle string
	LastUserMessage   *conversation.Turn
	ContextSummary    string
	MessageCount      int
}

// topicKeywords maps topic tags to Hanzi keywords matched by substring
// containment against recent message text.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"greeting", []string{"你好", "再见", "谢谢", "不客气"}},
	{"family", []string{"爸爸", "妈妈", "家人", "儿子", "女儿"}},
	{"food", []string{"吃", "饭", "菜", "水果", "喝"}},
	{"weather", []string{"天气", "雨", "晴天", "冷", "热"}},
	{"work", []string{"工作", "公司", "老板", "同事"}},
	{"time", []string{"时间", "今天", "昨天", "明天", "现在"}},
	{"location", []string{"在哪里", "去", "来", "这里", "那里"}},
}

// AnalyzeContext derives a topic/style summary from conversation history.
// Only the most recent ten turns are scanned.
func AnalyzeContext(history []conversation.Turn) Summary {
	if len(history) == 0 {
		return Summary{ConversationStyle: "greeting"}
	}

	recent := history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	var topics []string
	for _, entry := range topicKeywords {
		for _, turn := range recent {
			if containsAny(turn.Hanzi, entry.keywords) {
				topics = append(topics, entry.topic)
				break
			}
		}
	}

	var lastUser *conversation.Turn
	var recentUserEnglish []string
	for i := range recent {
		if recent[i].Role == conversation.RoleUser {
			lastUser = &recent[i]
			recentUserEnglish = append(recentUserEnglish, recent[i].English)
		}
	}
	if len(recentUserEnglish) > 3 {
		recentUserEnglish = recentUserEnglish[len(recentUserEnglish)-3:]
	}

	style := "casual"
	switch {
	case len(recent) <= 2:
		style = "greeting"
	case contains(topics, "greeting"):
		style = "polite"
	}

	summary := ""
	if len(recentUserEnglish) > 0 {
		topicList := strings.Join(topics, ", ")
		if topicList == "" {
			topicList = "general conversation"
		}
		summary = "Recent conversation topics: " + topicList + ". " +
			"User has been discussing: " + strings.Join(recentUserEnglish, ", ") + "."
	}

	return Summary{
		RecentTopics:      topics,
		ConversationStyle: style,
		LastUserMessage:   lastUser,
		ContextSummary:    summary,
		MessageCount:      len(history),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
