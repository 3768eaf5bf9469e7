package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateEmptyInputSkipsProvider(t *testing.T) {
	p := &fakeProvider{reply: "should not be called"}

	got := Translate(context.Background(), p, "   ")
	assert.Equal(t, "No input to translate.", got)
	assert.Zero(t, p.calls)
}

func TestTranslateStripsLabel(t *testing.T) {
	p := &fakeProvider{reply: "English translation: How are you?"}

	got := Translate(context.Background(), p, "你好吗？")
	assert.Equal(t, "How are you?", got)
	assert.Equal(t, 1, p.calls)
	assert.InDelta(t, 0.3, p.lastReq.Temperature, 0.001)
}

func TestTranslateLabelCaseInsensitiveFirstColonOnly(t *testing.T) {
	p := &fakeProvider{reply: "ENGLISH TRANSLATION: Note: hello"}

	got := Translate(context.Background(), p, "你好")
	assert.Equal(t, "Note: hello", got)
}

func TestTranslatePlainResult(t *testing.T) {
	p := &fakeProvider{reply: "How are you?"}

	got := Translate(context.Background(), p, "你好吗？")
	assert.Equal(t, "How are you?", got)
}

func TestTranslateProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("provider down")}

	got := Translate(context.Background(), p, "你好")
	assert.Equal(t, "Translation unavailable.", got)
}

func TestTranslateEmptyProviderResult(t *testing.T) {
	p := &fakeProvider{reply: ""}

	got := Translate(context.Background(), p, "你好")
	assert.Equal(t, "Could not translate.", got)
}
