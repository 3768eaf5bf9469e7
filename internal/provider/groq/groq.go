// Package groq implements the speech-to-text and chat-completion clients
// against Groq's OpenAI-compatible API.
//
// It uses the Audio Transcription API (whisper-large-v3) for Mandarin
// speech-to-text and the Chat Completions API for translation and tutor
// reply generation. Every call is attempted exactly once with a 30 second
// timeout; retry and fallback policy belongs to the caller.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/nihao-labs/yuban/internal/config"
)

const requestTimeout = 30 * time.Second

// ErrEmptyAudio is returned when a zero-length audio buffer is submitted
// for transcription.
var ErrEmptyAudio = errors.New("empty audio buffer")

// FailureKind classifies a transcription failure by provider status.
type FailureKind string

const (
	// KindBadRequest covers malformed audio or parameters (HTTP 400).
	KindBadRequest FailureKind = "bad_request"

	// KindAuth covers credential rejection (HTTP 401).
	KindAuth FailureKind = "auth"

	// KindTooLarge covers oversized payloads (HTTP 413).
	KindTooLarge FailureKind = "too_large"

	// KindGeneric covers every other provider failure, including timeouts.
	KindGeneric FailureKind = "generic"
)

// TranscriptionError is a classified transcription failure.
type TranscriptionError struct {
	Kind    FailureKind
	Message string
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("audio transcription failed (%s): %s", e.Kind, e.Message)
}

// Client talks to the Groq API.
type Client struct {
	apiKey             string
	baseURL            string
	transcriptionModel string
	chatModel          string
	client             *http.Client
}

// New creates a new Groq client from config.
func New(cfg config.GroqConfig) *Client {
	return &Client{
		apiKey:             cfg.APIKey,
		baseURL:            strings.TrimSuffix(cfg.BaseURL, "/"),
		transcriptionModel: cfg.TranscriptionModel,
		chatModel:          cfg.ChatModel,
		client:             &http.Client{Timeout: requestTimeout},
	}
}

// Transcribe sends recorded audio to the transcription API, constrained to
// Mandarin and a deterministic decoding temperature of zero, and returns the
// trimmed transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".webm"
	}
	part, err := writer.CreateFormFile("file", "audio"+ext)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}

	_ = writer.WriteField("model", c.transcriptionModel)
	_ = writer.WriteField("response_format", "verbose_json")
	_ = writer.WriteField("language", "zh")
	_ = writer.WriteField("temperature", "0")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TranscriptionError{Kind: KindGeneric, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &TranscriptionError{Kind: KindGeneric, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyTranscriptionStatus(resp.StatusCode, respBody)
	}

	text := decodeTranscript(respBody)
	slog.Debug("transcription complete", "text_length", len(text))
	return text, nil
}

// classifyTranscriptionStatus maps a provider status to a typed failure.
func classifyTranscriptionStatus(status int, body []byte) *TranscriptionError {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 512 {
		detail = detail[:512]
	}

	switch status {
	case http.StatusBadRequest:
		return &TranscriptionError{Kind: KindBadRequest, Message: "bad request: " + detail}
	case http.StatusUnauthorized:
		return &TranscriptionError{Kind: KindAuth, Message: "invalid API key"}
	case http.StatusRequestEntityTooLarge:
		return &TranscriptionError{Kind: KindTooLarge, Message: "file too large"}
	default:
		return &TranscriptionError{Kind: KindGeneric, Message: fmt.Sprintf("status %d: %s", status, detail)}
	}
}

// decodeTranscript normalizes the upstream response shapes into one string.
// The provider returns either a structured object with a text field
// (verbose_json) or the bare transcript (text format); both are accepted.
// An object decode is authoritative even when the text field is empty —
// whisper reports silence as {"text": ""} and that must surface as an empty
// transcript, not as the raw JSON body.
func decodeTranscript(body []byte) string {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var structured struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(trimmed, &structured); err == nil {
			return strings.TrimSpace(structured.Text)
		}
	}

	var plain string
	if err := json.Unmarshal(trimmed, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	return strings.TrimSpace(string(trimmed))
}

// Message is one chat completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest holds the tunable parts of a chat completion call.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type chatRequestBody struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends a message sequence to the Chat Completions API and
// returns the trimmed reply text.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (string, error) {
	reqBody := chatRequestBody{
		Model:       c.chatModel,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        1,
		Stream:      false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("chat failed (status %d): %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from chat API")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
