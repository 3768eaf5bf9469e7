// Package gtts implements the speech.Synthesizer using the Google Translate
// TTS endpoint. It is the simple single-voice backend: no API key, MP3
// output, one HTTP GET per text chunk.
package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/nihao-labs/yuban/internal/config"
	"github.com/nihao-labs/yuban/internal/speech"
)

// maxChunkRunes is the longest text the endpoint accepts per request.
// Longer inputs are split at sentence punctuation and the MP3 segments
// concatenated, which players accept as a multi-frame stream.
const maxChunkRunes = 200

// Synthesizer implements speech.Synthesizer over the Translate TTS endpoint.
type Synthesizer struct {
	endpoint string
	language string
	client   *http.Client
}

// New creates a new Translate TTS synthesizer from config.
func New(cfg config.GTTSConfig) *Synthesizer {
	lang := cfg.Language
	if lang == "" {
		lang = "zh-CN"
	}
	return &Synthesizer{
		endpoint: cfg.Endpoint,
		language: lang,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize fetches MP3 audio for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*speech.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	var audio []byte
	for _, chunk := range splitChunks(text, maxChunkRunes) {
		segment, err := s.fetch(ctx, chunk)
		if err != nil {
			return nil, err
		}
		audio = append(audio, segment...)
	}

	return &speech.Result{
		Audio:       audio,
		ContentType: "audio/mpeg",
		Ext:         ".mp3",
	}, nil
}

// Close is a no-op — requests are stateless.
func (s *Synthesizer) Close() error { return nil }

func (s *Synthesizer) fetch(ctx context.Context, text string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", s.language)
	q.Set("q", text)
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating tts request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, body)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// splitChunks splits text into runs of at most max runes, preferring to cut
// after sentence punctuation.
func splitChunks(text string, max int) []string {
	runes := []rune(text)
	if len(runes) <= max {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + max
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := end
		for i := end; i > start; i-- {
			if isSentenceBreak(runes[i-1]) {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[start:cut]))
		start = cut
	}
	return chunks
}

func isSentenceBreak(r rune) bool {
	switch r {
	case '。', '！', '？', '，', '.', '!', '?', ',':
		return true
	}
	return false
}
