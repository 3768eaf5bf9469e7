// Package normalize wraps a speech.Synthesizer with an ffmpeg loudness
// post-processing chain that maximizes perceived volume without clipping.
//
// The full chain is two-pass loudness normalization (measure, then apply
// with the measured values) followed by dynamic-range compression and a hard
// limiter. If the full chain fails, a single-stage volume boost plus limiter
// is tried; if that also fails the unprocessed audio is returned. Synthesis
// output is therefore never lost to a post-processing failure.
package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Target loudness profile: integrated loudness, true peak, loudness range.
const (
	loudnormProfile = "I=-16:TP=-1.5:LRA=11"
	compressor      = "acompressor=threshold=-18dB:ratio=3:attack=5:release=50"
	limiter         = "alimiter=limit=0.97"
	boostFilter     = "volume=1.5," + limiter
)

// Audio is the minimal artifact shape the normalizer rewrites.
type Audio struct {
	Data []byte
	Ext  string
}

// Processor runs ffmpeg filter chains over audio artifacts.
type Processor struct {
	ffmpeg string
}

// NewProcessor creates a processor using the given ffmpeg binary path.
func NewProcessor(ffmpegPath string) *Processor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Processor{ffmpeg: ffmpegPath}
}

// Normalize applies the loudness chain to audio, degrading through the
// simpler boost chain to a passthrough. It never returns an error: the
// worst case is the input unchanged.
func (p *Processor) Normalize(ctx context.Context, in Audio) Audio {
	out, err := p.loudnessChain(ctx, in)
	if err == nil {
		return out
	}
	slog.Warn("loudness normalization chain failed, trying volume boost", "error", err)

	out, err = p.runFilter(ctx, in, boostFilter)
	if err == nil {
		return out
	}
	slog.Warn("volume boost failed, using unprocessed audio", "error", err)
	return in
}

// loudnessChain measures the input's loudness, then applies loudnorm with
// the measured values followed by compression and limiting.
func (p *Processor) loudnessChain(ctx context.Context, in Audio) (Audio, error) {
	stats, err := p.measure(ctx, in)
	if err != nil {
		return Audio{}, fmt.Errorf("loudness measurement: %w", err)
	}

	filter := fmt.Sprintf(
		"loudnorm=%s:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=%s:linear=true,%s,%s",
		loudnormProfile,
		stats.InputI, stats.InputTP, stats.InputLRA, stats.InputThresh, stats.TargetOffset,
		compressor, limiter,
	)
	return p.runFilter(ctx, in, filter)
}

// loudnormStats is the measurement JSON ffmpeg prints on the first pass.
type loudnormStats struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
}

func (p *Processor) measure(ctx context.Context, in Audio) (*loudnormStats, error) {
	inPath, cleanup, err := writeTemp(in)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	cmd := exec.CommandContext(ctx, p.ffmpeg,
		"-hide_banner", "-nostats",
		"-i", inPath,
		"-af", "loudnorm="+loudnormProfile+":print_format=json",
		"-f", "null", "-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg measure: %w: %s", err, tail(stderr.String(), 256))
	}
	return parseLoudnormStats(stderr.String())
}

// parseLoudnormStats extracts the trailing JSON block from ffmpeg's stderr.
func parseLoudnormStats(stderr string) (*loudnormStats, error) {
	start := strings.LastIndex(stderr, "{")
	end := strings.LastIndex(stderr, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no loudnorm stats in ffmpeg output")
	}

	var stats loudnormStats
	if err := json.Unmarshal([]byte(stderr[start:end+1]), &stats); err != nil {
		return nil, fmt.Errorf("parsing loudnorm stats: %w", err)
	}
	if stats.InputI == "" {
		return nil, fmt.Errorf("incomplete loudnorm stats")
	}
	return &stats, nil
}

// runFilter pipes audio through a single ffmpeg filter invocation.
func (p *Processor) runFilter(ctx context.Context, in Audio, filter string) (Audio, error) {
	inPath, cleanupIn, err := writeTemp(in)
	if err != nil {
		return Audio{}, err
	}
	defer cleanupIn()

	outFile, err := os.CreateTemp("", "yuban-norm-out-*"+in.Ext)
	if err != nil {
		return Audio{}, fmt.Errorf("creating output temp file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, p.ffmpeg,
		"-hide_banner", "-nostats", "-y",
		"-i", inPath,
		"-af", filter,
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Audio{}, fmt.Errorf("ffmpeg filter: %w: %s", err, tail(stderr.String(), 256))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return Audio{}, fmt.Errorf("reading filtered audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, fmt.Errorf("ffmpeg produced empty output")
	}
	return Audio{Data: data, Ext: in.Ext}, nil
}

func writeTemp(in Audio) (string, func(), error) {
	f, err := os.CreateTemp("", "yuban-norm-in-*"+in.Ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating input temp file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(in.Data); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("writing input temp file: %w", err)
	}
	f.Close()
	return path, func() { os.Remove(path) }, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
