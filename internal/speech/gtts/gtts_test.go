package gtts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihao-labs/yuban/internal/config"
)

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "zh-CN", r.URL.Query().Get("tl"))
		assert.Equal(t, "tw-ob", r.URL.Query().Get("client"))
		assert.Equal(t, "你好！", r.URL.Query().Get("q"))
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	s := New(config.GTTSConfig{Endpoint: srv.URL, Language: "zh-CN"})
	res, err := s.Synthesize(context.Background(), "你好！")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)
	assert.Equal(t, ".mp3", res.Ext)
}

func TestSynthesizeEmptyText(t *testing.T) {
	s := New(config.GTTSConfig{Endpoint: "http://localhost:0"})
	_, err := s.Synthesize(context.Background(), "")
	assert.Error(t, err)
}

func TestSynthesizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(config.GTTSConfig{Endpoint: srv.URL})
	_, err := s.Synthesize(context.Background(), "你好")
	assert.Error(t, err)
}

func TestSynthesizeLongTextConcatenatesChunks(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	long := strings.Repeat("今天天气很好。", 60) // well past one chunk
	s := New(config.GTTSConfig{Endpoint: srv.URL})
	res, err := s.Synthesize(context.Background(), long)
	require.NoError(t, err)
	assert.Greater(t, requests, 1)
	assert.Len(t, res.Audio, requests)
}

func TestSplitChunks(t *testing.T) {
	assert.Equal(t, []string{"你好"}, splitChunks("你好", 200))

	long := strings.Repeat("一二三四五六七八九。", 30)
	chunks := splitChunks(long, 200)
	assert.Greater(t, len(chunks), 1)

	var total int
	for _, c := range chunks {
		n := utf8.RuneCountInString(c)
		assert.LessOrEqual(t, n, 200)
		assert.Greater(t, n, 0)
		total += n
	}
	assert.Equal(t, utf8.RuneCountInString(long), total)
}
