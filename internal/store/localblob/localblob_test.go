package localblob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPut(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "/audio/")

	url, err := s.Put(context.Background(), "response_abc.mp3", []byte("mp3-bytes"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "/audio/response_abc.mp3", url)

	data, err := os.ReadFile(filepath.Join(dir, "response_abc.mp3"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)
}

func TestPutCreatesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "/audio") // missing trailing slash is tolerated

	url, err := s.Put(context.Background(), "char_tts_audio/char_abc.mp3", []byte("x"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "/audio/char_tts_audio/char_abc.mp3", url)

	_, err = os.Stat(filepath.Join(dir, "char_tts_audio", "char_abc.mp3"))
	assert.NoError(t, err)
}
