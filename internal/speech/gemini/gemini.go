// Package gemini implements the speech.Synthesizer using the Gemini TTS
// models. Unlike the gtts backend the voice is configurable, and the model
// returns raw little-endian PCM that gets wrapped in a WAV container here.
package gemini

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nihao-labs/yuban/internal/config"
	"github.com/nihao-labs/yuban/internal/speech"
)

// Synthesizer implements speech.Synthesizer using the Gemini API.
type Synthesizer struct {
	client *genai.Client
	model  string
	voice  string
}

// New creates a new Gemini synthesizer from config. It fails when the API
// key is missing or the client cannot be constructed; callers treat that as
// "backend disabled", not a startup error.
func New(ctx context.Context, cfg config.GeminiConfig) (*Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Synthesizer{
		client: client,
		model:  cfg.Model,
		voice:  cfg.Voice,
	}, nil
}

// Synthesize generates speech for text with the configured prebuilt voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*speech.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), &genai.GenerateContentConfig{
		Temperature:        genai.Ptr[float32](1),
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini tts: %w", err)
	}

	var pcm []byte
	mimeType := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				pcm = append(pcm, part.InlineData.Data...)
				mimeType = part.InlineData.MIMEType
			}
		}
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("gemini tts: no audio data in response")
	}

	rate := sampleRateFromMIME(mimeType)
	slog.Debug("gemini tts complete", "pcm_bytes", len(pcm), "mime", mimeType, "rate", rate)

	return &speech.Result{
		Audio:       pcmToWAV(pcm, rate, 1, 2),
		ContentType: "audio/wav",
		Ext:         ".wav",
	}, nil
}

// Close is a no-op — the genai client holds no connections between calls.
func (s *Synthesizer) Close() error { return nil }

// sampleRateFromMIME extracts the rate parameter from MIME types like
// "audio/L16;codec=pcm;rate=24000". Gemini TTS defaults to 24kHz.
func sampleRateFromMIME(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		param = strings.TrimSpace(param)
		if v, ok := strings.CutPrefix(param, "rate="); ok {
			if rate, err := strconv.Atoi(v); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return 24000
}

// pcmToWAV wraps raw PCM data in a WAV container.
func pcmToWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	dataLen := len(pcm)
	fileLen := 36 + dataLen // 44-byte header minus 8 bytes for RIFF header = 36

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fileLen))
	buf.WriteString("WAVE")

	// fmt subchunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))         // subchunk1 size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))          // audio format (PCM)
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))   // channels
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate)) // sample rate
	byteRate := sampleRate * channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate)) // byte rate
	blockAlign := channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))       // block align
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8)) // bits per sample

	// data subchunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}
