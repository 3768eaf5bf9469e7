package gemini

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRateFromMIME(t *testing.T) {
	assert.Equal(t, 24000, sampleRateFromMIME("audio/L16;codec=pcm;rate=24000"))
	assert.Equal(t, 22050, sampleRateFromMIME("audio/L16; rate=22050"))
	assert.Equal(t, 24000, sampleRateFromMIME("audio/L16"))
	assert.Equal(t, 24000, sampleRateFromMIME(""))
	assert.Equal(t, 24000, sampleRateFromMIME("audio/L16;rate=bogus"))
}

func TestPCMToWAVHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := pcmToWAV(pcm, 24000, 1, 2)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}
