// Package frame implements the Frame Assembler: a
// pre-allocated framebuffer that streamed pixel tiles are copied into as
// they arrive from the host, tracking how much of the frame has been
// filled.
package frame

import "errors"

// ErrBufferOverrun is returned by WriteTile when the tile's bounds or
// payload would write past the end of the buffer.
var ErrBufferOverrun = errors.New("frame: tile write would exceed buffer bounds")

// Buffer holds one frame's pixel data as a flat, row-major,
// channel-interleaved array: Data[(y*Width+x)*NumChannels+c].
type Buffer struct {
	Width, Height, NumChannels int
	Data                       []float32

	// WriteCursor is the next offset in Data that a tile write will land
	// at. Tiles are expected to arrive in an order consistent with the
	// flags negotiated at Open (scanline order when requested).
	WriteCursor int

	// FinishedPixels counts pixels written so far; TotalPixels is the
	// frame's full pixel count. FinishedPixels == TotalPixels marks the
	// frame complete.
	FinishedPixels, TotalPixels int
}

// NewBuffer allocates a zeroed buffer for a frame of the given dimensions.
func NewBuffer(width, height, numChannels int) *Buffer {
	return &Buffer{
		Width:       width,
		Height:      height,
		NumChannels: numChannels,
		Data:        make([]float32, width*height*numChannels),
		TotalPixels: width * height,
	}
}

// WriteTile copies a tile's pixel data into the buffer at the current
// write cursor and advances it. The tile covers [xMin, xMax) x [yMin,
// yMax) and tile must hold at least (xMax-xMin)*(yMax-yMin)*NumChannels
// float32 values in row-major, channel-interleaved order. A zero-area
// tile is a no-op.
func (b *Buffer) WriteTile(xMin, xMax, yMin, yMax int, tile []float32) error {
	w := xMax - xMin
	h := yMax - yMin
	if w <= 0 || h <= 0 {
		return nil
	}
	count := w * h * b.NumChannels
	if len(tile) < count {
		return ErrBufferOverrun
	}
	if b.WriteCursor+count > len(b.Data) {
		return ErrBufferOverrun
	}
	copy(b.Data[b.WriteCursor:b.WriteCursor+count], tile[:count])
	b.WriteCursor += count
	b.FinishedPixels += w * h
	return nil
}

// Complete reports whether every pixel in the frame has been written.
func (b *Buffer) Complete() bool {
	return b.FinishedPixels >= b.TotalPixels
}
