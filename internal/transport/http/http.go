// Package http implements the REST API for the yuban daemon.
//
// It exposes the tutoring turn endpoint, conversation history access, the
// single-character lookup, the locally stored audio artifacts, and the
// generated Swagger UI.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nihao-labs/yuban/internal/conversation"
	"github.com/nihao-labs/yuban/internal/relay"
)

// maxAudioBytes bounds the inbound request body.
const maxAudioBytes = 25 << 20 // 25 MB

// allowedAudioTypes is the upload MIME allow-list.
var allowedAudioTypes = map[string]bool{
	"audio/webm":  true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/mp3":   true,
	"audio/mpeg":  true,
	"audio/mp4":   true,
	"audio/m4a":   true,
	"audio/x-m4a": true,
	"audio/ogg":   true,
	"audio/flac":  true,
}

// Pipeline is the slice of the relay the API needs.
type Pipeline interface {
	Interact(ctx context.Context, req relay.Request) (*conversation.TurnResponse, error)
	CharacterInfo(ctx context.Context, char string) (*conversation.CharacterInfo, error)
	History(ctx context.Context) ([]conversation.Turn, error)
	ClearHistory(ctx context.Context) error
}

// Server is the API server.
type Server struct {
	port     int
	pipeline Pipeline

	// audioDir, when non-empty, is served read-only under audioPrefix for
	// the local blob backend.
	audioDir    string
	audioPrefix string

	server *http.Server
}

// New creates an API server on the given port. audioDir may be empty when
// no local audio directory should be served.
func New(port int, pipeline Pipeline, audioDir, audioPrefix string) *Server {
	// The route must be a subtree pattern or blob URLs under the prefix
	// would only match exactly.
	if !strings.HasSuffix(audioPrefix, "/") {
		audioPrefix += "/"
	}
	return &Server{port: port, pipeline: pipeline, audioDir: audioDir, audioPrefix: audioPrefix}
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/interact", s.handleInteract)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	mux.HandleFunc("GET /api/characters/{char}", s.handleCharacter)

	if s.audioDir != "" {
		mux.Handle("GET "+s.audioPrefix, http.StripPrefix(s.audioPrefix, http.FileServer(http.Dir(s.audioDir))))
	}

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// ListenAndServe starts the API server. It blocks until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// interactRequest is the JSON body variant of the turn endpoint.
type interactRequest struct {
	AudioBase64 string              `json:"audio_base64"`
	Filename    string              `json:"filename"`
	ChatContext []conversation.Turn `json:"chat_context"`
}

// handleInteract processes one tutoring turn.
//
// @Summary     Submit a recorded utterance
// @Description Accepts a multipart upload (field "audio") or a JSON body with base64-encoded
// @Description audio plus an optional prior-turn context array. Runs the full pipeline and
// @Description returns the transcribed user turn, the tutor reply, and a reply audio URL.
// @Description Provider failures degrade to fixed fallback text with status 200.
// @Tags        tutoring
// @Accept      mpfd
// @Accept      json
// @Produce     json
// @Param       request  body      interactRequest  false  "JSON request (alternative to multipart)"
// @Success     200  {object}  conversation.TurnResponse
// @Failure     400  {object}  map[string]string  "Missing or oversized audio payload"
// @Failure     500  {object}  map[string]string  "Server misconfiguration"
// @Router      /api/interact [post]
func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)

	req, err := decodeInteract(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.pipeline.Interact(r.Context(), *req)
	if err != nil {
		if errors.Is(err, relay.ErrNoAudio) {
			writeError(w, http.StatusBadRequest, "no audio provided")
			return
		}
		slog.Error("turn processing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeInteract extracts the audio payload and optional context from either
// request shape.
func decodeInteract(r *http.Request) (*relay.Request, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var body interactRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid json body: %w", err)
		}
		audio, err := base64.StdEncoding.DecodeString(body.AudioBase64)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 audio: %w", err)
		}
		return &relay.Request{Audio: audio, Filename: body.Filename, Context: body.ChatContext}, nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			return nil, fmt.Errorf("missing audio file field: %w", err)
		}
		defer file.Close()

		if ct, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type")); ct != "" && !allowedAudioTypes[ct] {
			return nil, fmt.Errorf("unsupported audio type %q", ct)
		}

		audio, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("reading audio: %w", err)
		}
		return &relay.Request{Audio: audio, Filename: header.Filename}, nil
	}

	return nil, fmt.Errorf("unsupported content type %q", mediaType)
}

// handleHistory returns the full conversation.
//
// @Summary     Fetch conversation history
// @Description Returns every stored turn in ascending creation order.
// @Tags        history
// @Produce     json
// @Success     200  {array}   conversation.Turn
// @Failure     500  {object}  map[string]string
// @Router      /api/history [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.pipeline.History(r.Context())
	if err != nil {
		slog.Error("listing history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if turns == nil {
		turns = []conversation.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

// handleClearHistory deletes the whole conversation.
//
// @Summary     Clear conversation history
// @Description Removes every stored turn. Idempotent.
// @Tags        history
// @Produce     json
// @Success     200  {object}  map[string]string
// @Failure     500  {object}  map[string]string
// @Router      /api/history [delete]
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.ClearHistory(r.Context()); err != nil {
		slog.Error("clearing history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleCharacter looks up a single Hanzi character.
//
// @Summary     Look up a character
// @Description Returns the romanization, an English gloss, and a best-effort
// @Description synthesized pronunciation for one Hanzi character.
// @Tags        tutoring
// @Produce     json
// @Param       char  path      string  true  "Single Hanzi character"
// @Success     200  {object}  conversation.CharacterInfo
// @Failure     400  {object}  map[string]string  "Input is not a single character"
// @Router      /api/characters/{char} [get]
func (s *Server) handleCharacter(w http.ResponseWriter, r *http.Request) {
	info, err := s.pipeline.CharacterInfo(r.Context(), r.PathValue("char"))
	if err != nil {
		if errors.Is(err, relay.ErrNotSingleCharacter) {
			writeError(w, http.StatusBadRequest, "expected exactly one character")
			return
		}
		slog.Error("character lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
