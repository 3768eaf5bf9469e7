// Package relay orchestrates one tutoring turn: transcription, romanization,
// translation, reply generation, speech synthesis, and persistence.
//
// The relay degrades rather than fails: once a non-empty audio payload is
// accepted, every downstream provider error maps to a fixed fallback string
// or a null audio reference, and the caller still receives a complete
// TurnResponse.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nihao-labs/yuban/internal/conversation"
	"github.com/nihao-labs/yuban/internal/pinyin"
	"github.com/nihao-labs/yuban/internal/speech"
	"github.com/nihao-labs/yuban/internal/store"
	"github.com/nihao-labs/yuban/internal/tutor"
)

// ErrNoAudio is returned when a turn request carries no audio payload.
var ErrNoAudio = errors.New("no audio payload")

// ErrNotSingleCharacter is returned by CharacterInfo for input that is not
// exactly one character.
var ErrNotSingleCharacter = errors.New("input must be a single character")

// Fallback pair emitted when transcription fails or comes back empty. The
// degenerate turn is returned to the client but never persisted.
const (
	fallbackUserHanzi   = "无法转录音频。"
	fallbackUserEnglish = "Could not transcribe audio."

	fallbackReplyHanzi   = "抱歉，我没听清您说什么。"
	fallbackReplyEnglish = "Sorry, I didn't understand what you said."
)

// Transcriber converts recorded audio into Mandarin text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// ReplyGenerator produces the tutor's next dual-language turn.
type ReplyGenerator interface {
	Reply(ctx context.Context, userText string, history []conversation.Turn) (hanzi, english string)
}

// Request is one inbound tutoring turn.
type Request struct {
	// Audio is the recorded utterance. Must be non-empty.
	Audio []byte

	// Filename hints the audio container format by extension.
	Filename string

	// Context is an optional client-supplied history slice used for
	// prompting instead of the stored history.
	Context []conversation.Turn
}

// Options wires a Relay's collaborators. Synthesizer and Blobs may be nil,
// which disables audio output for every turn.
type Options struct {
	Transcriber Transcriber
	Provider    tutor.ChatProvider
	Generator   ReplyGenerator
	Synthesizer speech.Synthesizer
	Store       store.Store
	Blobs       store.BlobStore
}

// Relay runs the tutoring pipeline.
type Relay struct {
	transcriber Transcriber
	provider    tutor.ChatProvider
	generator   ReplyGenerator
	synth       speech.Synthesizer
	store       store.Store
	blobs       store.BlobStore
}

// New creates a relay from its collaborators.
func New(opts Options) *Relay {
	return &Relay{
		transcriber: opts.Transcriber,
		provider:    opts.Provider,
		generator:   opts.Generator,
		synth:       opts.Synthesizer,
		store:       opts.Store,
		blobs:       opts.Blobs,
	}
}

// Interact runs one full turn. It returns ErrNoAudio for an empty payload;
// every other failure degrades inside the response.
func (r *Relay) Interact(ctx context.Context, req Request) (*conversation.TurnResponse, error) {
	if len(req.Audio) == 0 {
		return nil, ErrNoAudio
	}

	start := time.Now()
	log := slog.With("turn_id", uuid.New().String())

	transcript, err := r.transcriber.Transcribe(ctx, req.Audio, req.Filename)
	if err != nil || strings.TrimSpace(transcript) == "" {
		if err != nil {
			log.Error("transcription failed, returning fallback turn", "error", err)
		} else {
			log.Warn("transcription returned empty text, returning fallback turn")
		}
		return &conversation.TurnResponse{
			UserInput:  conversation.TurnText{Hanzi: fallbackUserHanzi, Pinyin: pinyin.Annotate(fallbackUserHanzi), English: fallbackUserEnglish},
			AIResponse: conversation.TurnText{Hanzi: fallbackReplyHanzi, Pinyin: pinyin.Annotate(fallbackReplyHanzi), English: fallbackReplyEnglish},
		}, nil
	}
	transcript = strings.TrimSpace(transcript)

	// Romanization and translation are independent of each other.
	var (
		userPinyin  string
		userEnglish string
		wg          sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		userPinyin = pinyin.Annotate(transcript)
	}()
	go func() {
		defer wg.Done()
		userEnglish = tutor.Translate(ctx, r.provider, transcript)
	}()
	wg.Wait()

	// The history snapshot is taken before the current turn is appended so
	// the prompt does not carry the utterance twice.
	history := req.Context
	if len(history) == 0 {
		history = r.loadHistory(ctx)
	}

	userTurn := conversation.Turn{
		Role:      conversation.RoleUser,
		Hanzi:     transcript,
		Pinyin:    userPinyin,
		English:   userEnglish,
		CreatedAt: time.Now().UTC(),
	}
	r.persist(ctx, userTurn)

	replyHanzi, replyEnglish := r.generator.Reply(ctx, transcript, history)
	replyPinyin := pinyin.Annotate(replyHanzi)

	audioURL := r.synthesizeAndUpload(ctx, replyHanzi, "response_")

	assistantTurn := conversation.Turn{
		Role:      conversation.RoleAssistant,
		Hanzi:     replyHanzi,
		Pinyin:    replyPinyin,
		English:   replyEnglish,
		AudioURL:  audioURL,
		CreatedAt: time.Now().UTC(),
	}
	r.persist(ctx, assistantTurn)

	log.Info("turn complete",
		"transcript_length", utf8.RuneCountInString(transcript),
		"audio", audioURL != nil,
		"duration", time.Since(start).Round(time.Millisecond))

	return &conversation.TurnResponse{
		UserInput:  userTurn.Text(),
		AIResponse: assistantTurn.Text(),
		AudioURL:   audioURL,
	}, nil
}

// CharacterInfo looks up a single Hanzi character: its romanization, an
// English gloss, and a best-effort synthesized pronunciation.
func (r *Relay) CharacterInfo(ctx context.Context, char string) (*conversation.CharacterInfo, error) {
	char = strings.TrimSpace(char)
	if utf8.RuneCountInString(char) != 1 {
		return nil, ErrNotSingleCharacter
	}

	info := &conversation.CharacterInfo{
		Character: char,
		Pinyin:    pinyin.Annotate(char),
		English:   tutor.Translate(ctx, r.provider, char),
	}
	info.AudioURL = r.synthesizeAndUpload(ctx, char, "char_tts_audio/char_")
	return info, nil
}

// History returns the full stored conversation, ascending.
func (r *Relay) History(ctx context.Context) ([]conversation.Turn, error) {
	return r.store.ListAll(ctx)
}

// ClearHistory removes every stored turn.
func (r *Relay) ClearHistory(ctx context.Context) error {
	return r.store.Clear(ctx)
}

func (r *Relay) loadHistory(ctx context.Context) []conversation.Turn {
	history, err := r.store.ListAll(ctx)
	if err != nil {
		slog.Warn("loading history for prompting failed", "error", err)
		return nil
	}
	return history
}

// persist appends best-effort: a failing store logs and the turn is lost,
// but the request succeeds.
func (r *Relay) persist(ctx context.Context, turn conversation.Turn) {
	if err := r.store.Append(ctx, turn); err != nil {
		slog.Error("persisting turn failed", "role", turn.Role, "error", err)
	}
}

// synthesizeAndUpload converts text to speech and uploads the artifact under
// a fresh unique name. Any failure, or an unconfigured synthesizer or blob
// store, yields nil.
func (r *Relay) synthesizeAndUpload(ctx context.Context, text, namePrefix string) *string {
	if r.synth == nil || r.blobs == nil {
		return nil
	}

	res, err := r.synth.Synthesize(ctx, text)
	if err != nil {
		slog.Warn("speech synthesis failed", "error", err)
		return nil
	}

	name := fmt.Sprintf("%s%s%s", namePrefix, uuid.New().String(), res.Ext)
	url, err := r.blobs.Put(ctx, name, res.Audio, res.ContentType)
	if err != nil {
		slog.Warn("audio upload failed", "name", name, "error", err)
		return nil
	}
	return &url
}
