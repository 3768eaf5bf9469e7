// Package speech defines the interface for text-to-speech synthesis.
//
// Synthesis is always best-effort in the pipeline: a failed Synthesize call
// means the turn ships without audio, never a failed request.
package speech

import "context"

// Result holds the output of TTS synthesis.
type Result struct {
	// Audio is the synthesized audio file bytes.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/mpeg").
	ContentType string

	// Ext is the file extension for the audio format, dot included.
	Ext string
}

// Synthesizer converts Mandarin text to audio.
type Synthesizer interface {
	// Synthesize generates an audio artifact from the given text.
	Synthesize(ctx context.Context, text string) (*Result, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}
