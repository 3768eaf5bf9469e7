package normalize

import (
	"context"

	"github.com/nihao-labs/yuban/internal/speech"
)

// Synthesizer decorates another speech.Synthesizer with loudness
// normalization of its output.
type Synthesizer struct {
	next speech.Synthesizer
	proc *Processor
}

// Wrap returns a Synthesizer that post-processes next's output through the
// ffmpeg chain.
func Wrap(next speech.Synthesizer, ffmpegPath string) *Synthesizer {
	return &Synthesizer{next: next, proc: NewProcessor(ffmpegPath)}
}

// Synthesize runs the wrapped backend and normalizes the result. A failing
// chain degrades to the backend's unprocessed audio; only a failure of the
// backend itself is an error.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*speech.Result, error) {
	res, err := s.next.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}

	out := s.proc.Normalize(ctx, Audio{Data: res.Audio, Ext: res.Ext})
	res.Audio = out.Data
	return res, nil
}

// Close closes the wrapped backend.
func (s *Synthesizer) Close() error { return s.next.Close() }
