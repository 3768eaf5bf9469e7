package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihao-labs/yuban/internal/speech"
)

func TestParseLoudnormStats(t *testing.T) {
	stderr := `
[Parsed_loudnorm_0 @ 0x5599]
{
	"input_i" : "-27.61",
	"input_tp" : "-10.28",
	"input_lra" : "5.30",
	"input_thresh" : "-38.54",
	"output_i" : "-16.58",
	"output_tp" : "-1.50",
	"output_lra" : "4.10",
	"output_thresh" : "-27.30",
	"normalization_type" : "dynamic",
	"target_offset" : "0.58"
}
`
	stats, err := parseLoudnormStats(stderr)
	require.NoError(t, err)
	assert.Equal(t, "-27.61", stats.InputI)
	assert.Equal(t, "-10.28", stats.InputTP)
	assert.Equal(t, "5.30", stats.InputLRA)
	assert.Equal(t, "-38.54", stats.InputThresh)
	assert.Equal(t, "0.58", stats.TargetOffset)
}

func TestParseLoudnormStatsMissing(t *testing.T) {
	_, err := parseLoudnormStats("frame=  100 fps=0.0 size=N/A")
	assert.Error(t, err)

	_, err = parseLoudnormStats(`{"output_i": "-16.0"}`)
	assert.Error(t, err)
}

func TestNormalizeDegradesToPassthrough(t *testing.T) {
	// A nonexistent ffmpeg binary fails both chains; the input must come
	// back unchanged.
	p := NewProcessor("/nonexistent/ffmpeg-binary")
	in := Audio{Data: []byte("mp3-bytes"), Ext: ".mp3"}

	out := p.Normalize(context.Background(), in)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, in.Ext, out.Ext)
}

type staticSynth struct{ res speech.Result }

func (s *staticSynth) Synthesize(context.Context, string) (*speech.Result, error) {
	r := s.res
	return &r, nil
}

func (s *staticSynth) Close() error { return nil }

func TestWrappedSynthesizerSurvivesChainFailure(t *testing.T) {
	inner := &staticSynth{res: speech.Result{Audio: []byte("audio"), ContentType: "audio/mpeg", Ext: ".mp3"}}
	s := Wrap(inner, "/nonexistent/ffmpeg-binary")

	res, err := s.Synthesize(context.Background(), "你好")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)
}
