// Package bmpio writes the renderer driver's output image. Spec §1 puts
// "PNG/BMP writers" out of scope as a file-format-support concern — the
// driver only ever needs to emit the one pixel layout it already holds in
// memory, not read or transcode arbitrary bitmaps — so this is a plain
// stdlib encoding/binary writer rather than an imported image codec:
// nothing in the retrieval pack carries a BMP encoder (golang.org/x/image
// only decodes), and round-tripping scene.PixelBuffer's own 32-bit RGBA
// layout through a general-purpose image.Image adapter would cost more
// than the twenty struct fields a BITMAPV4HEADER actually needs.
package bmpio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	fileHeaderSize = 14
	v4HeaderSize   = 108
)

// PixelSource is the subset of scene.PixelBuffer bmpio needs; kept as an
// interface so this package never imports rt/scene (the driver wires the
// two together, matching rt/scene's own layering: render packages don't
// import file-format packages).
type PixelSource interface {
	Dimensions() (width, height int)
	RGBA() []byte // width*height*4 bytes, row-major top-to-bottom
}

// Write encodes src as an uncompressed 32bpp BITMAPV4HEADER bitmap (BI_BITFIELDS,
// explicit R/G/B/A channel masks) so the alpha channel spec §6 assigns
// (255 on hit, 0 on miss) survives the file, then writes it to w.
func Write(w io.Writer, src PixelSource) error {
	width, height := src.Dimensions()
	pix := src.RGBA()
	if len(pix) != width*height*4 {
		return fmt.Errorf("bmpio: pixel buffer is %d bytes, want %d for %dx%d", len(pix), width*height*4, width, height)
	}

	imageSize := uint32(width * height * 4)
	fileSize := uint32(fileHeaderSize+v4HeaderSize) + imageSize
	dataOffset := uint32(fileHeaderSize + v4HeaderSize)

	buf := make([]byte, 0, fileSize)
	le := binary.LittleEndian

	// BITMAPFILEHEADER
	buf = append(buf, 'B', 'M')
	buf = le.AppendUint32(buf, fileSize)
	buf = le.AppendUint32(buf, 0) // reserved
	buf = le.AppendUint32(buf, dataOffset)

	// BITMAPV4HEADER
	buf = le.AppendUint32(buf, v4HeaderSize)
	buf = le.AppendUint32(buf, uint32(int32(width)))
	buf = le.AppendUint32(buf, uint32(int32(height))) // positive: bottom-up rows
	buf = le.AppendUint16(buf, 1)                     // planes
	buf = le.AppendUint16(buf, 32)                    // bits per pixel
	buf = le.AppendUint32(buf, 3)                      // BI_BITFIELDS
	buf = le.AppendUint32(buf, imageSize)
	buf = le.AppendUint32(buf, 2835) // 72 DPI
	buf = le.AppendUint32(buf, 2835)
	buf = le.AppendUint32(buf, 0) // colors used
	buf = le.AppendUint32(buf, 0) // important colors
	buf = le.AppendUint32(buf, 0x00FF0000) // R mask
	buf = le.AppendUint32(buf, 0x0000FF00) // G mask
	buf = le.AppendUint32(buf, 0x000000FF) // B mask
	buf = le.AppendUint32(buf, 0xFF000000) // A mask
	buf = append(buf, []byte("BGRs")...)  // colorspace: LCS_sRGB, little-endian bytes
	buf = append(buf, make([]byte, 9*4)...) // CIEXYZTRIPLE endpoints (3 CIEXYZ x 3 FXPT2DOT30), unused
	buf = le.AppendUint32(buf, 0)             // gamma red
	buf = le.AppendUint32(buf, 0)             // gamma green
	buf = le.AppendUint32(buf, 0)             // gamma blue

	// Pixel data, BGRA per pixel, bottom row first.
	row := make([]byte, width*4)
	for y := height - 1; y >= 0; y-- {
		src := pix[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			row[x*4+0] = src[x*4+2] // B
			row[x*4+1] = src[x*4+1] // G
			row[x*4+2] = src[x*4+0] // R
			row[x*4+3] = src[x*4+3] // A
		}
		buf = append(buf, row...)
	}

	_, err := w.Write(buf)
	return err
}

// WriteFile is Write to a freshly created file at path.
func WriteFile(path string, src PixelSource) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bmpio: create %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, src); err != nil {
		return err
	}
	return f.Close()
}
