package bmpio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuffer struct {
	w, h int
	pix  []byte
}

func (f *fakeBuffer) Dimensions() (int, int) { return f.w, f.h }
func (f *fakeBuffer) RGBA() []byte           { return f.pix }

func TestWriteProducesValidBMPHeader(t *testing.T) {
	buf := &fakeBuffer{w: 2, h: 2, pix: []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 0, 0, 0, 0,
	}}
	var out bytes.Buffer
	require.NoError(t, Write(&out, buf))

	b := out.Bytes()
	require.GreaterOrEqual(t, len(b), fileHeaderSize+v4HeaderSize+2*2*4)
	assert.Equal(t, "BM", string(b[0:2]))

	fileSize := binary.LittleEndian.Uint32(b[2:6])
	assert.EqualValues(t, len(b), fileSize)

	dataOffset := binary.LittleEndian.Uint32(b[10:14])
	assert.EqualValues(t, fileHeaderSize+v4HeaderSize, dataOffset)

	width := int32(binary.LittleEndian.Uint32(b[18:22]))
	height := int32(binary.LittleEndian.Uint32(b[22:26]))
	assert.EqualValues(t, 2, width)
	assert.EqualValues(t, 2, height)

	bpp := binary.LittleEndian.Uint16(b[28:30])
	assert.EqualValues(t, 32, bpp)

	// Bottom-up row order: the last source row (0,0,255,255 then 0,0,0,0)
	// should appear first in the pixel data as B,G,R,A.
	pixelData := b[dataOffset:]
	assert.Equal(t, []byte{255, 0, 0, 255}, pixelData[0:4])
}

func TestWriteRejectsMismatchedBufferSize(t *testing.T) {
	buf := &fakeBuffer{w: 2, h: 2, pix: []byte{1, 2, 3}}
	var out bytes.Buffer
	assert.Error(t, Write(&out, buf))
}
