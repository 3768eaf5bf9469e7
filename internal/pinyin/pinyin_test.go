package pinyin

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestAnnotateEmpty(t *testing.T) {
	assert.Equal(t, "", Annotate(""))
}

func TestAnnotateSimple(t *testing.T) {
	assert.Equal(t, "nǐ hǎo", Annotate("你好"))
}

func TestAnnotateSyllableCountBounded(t *testing.T) {
	inputs := []string{
		"你好",
		"无法转录音频。",
		"抱歉，我没听清您说什么。",
		"今天天气很好",
		"？！",
	}
	for _, in := range inputs {
		got := Annotate(in)
		if got == "" {
			continue
		}
		assert.LessOrEqual(t, len(strings.Fields(got)), utf8.RuneCountInString(in),
			"input %q -> %q", in, got)
	}
}

func TestAnnotateNonHanziPassthrough(t *testing.T) {
	assert.Equal(t, "o k", Annotate("ok"))
}
