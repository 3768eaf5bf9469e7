// Package pinyin converts Hanzi text to tone-marked romanization.
//
// The annotator is deliberately infallible: romanization problems degrade to
// an empty string and never fail the calling request.
package pinyin

import (
	"strings"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Annotate returns the space-joined tone-marked pinyin for text, one
// syllable per recognized character. Heteronyms resolve to their first
// reading. Non-Hanzi runes pass through unchanged as their own tokens.
// Empty or unrecognizable input yields "".
func Annotate(text string) string {
	if text == "" {
		return ""
	}

	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone
	args.Fallback = func(r rune, _ gopinyin.Args) []string {
		return []string{string(r)}
	}

	syllables := gopinyin.Pinyin(text, args)

	parts := make([]string, 0, len(syllables))
	for _, readings := range syllables {
		if len(readings) == 0 {
			continue
		}
		if s := strings.TrimSpace(readings[0]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
