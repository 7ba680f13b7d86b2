package postprocess

import (
	"github.com/gogpu/exrdisplay/internal/channels"
	"github.com/gogpu/exrdisplay/internal/frame"
	"github.com/gogpu/exrdisplay/internal/workerpool"
)

// unpremultiplyRGB divides the RGB channels by alpha everywhere alpha is
// nonzero, leaving zero-alpha pixels (fully transparent) untouched.
func unpremultiplyRGB(pool *workerpool.WorkerPool, buf *frame.Buffer, cm channels.Map) {
	rgbStart := *cm.RGBStart
	alphaIdx := *cm.Alpha
	scalePixels(pool, buf, func(p int) {
		a := buf.Data[p+alphaIdx]
		if a == 0 {
			return
		}
		buf.Data[p+rgbStart] /= a
		buf.Data[p+rgbStart+1] /= a
		buf.Data[p+rgbStart+2] /= a
	})
}

// premultiplyRGB multiplies the RGB channels by alpha unconditionally,
// reversing unpremultiplyRGB's transform ahead of encoding.
func premultiplyRGB(pool *workerpool.WorkerPool, buf *frame.Buffer, cm channels.Map) {
	rgbStart := *cm.RGBStart
	alphaIdx := *cm.Alpha
	scalePixels(pool, buf, func(p int) {
		a := buf.Data[p+alphaIdx]
		buf.Data[p+rgbStart] *= a
		buf.Data[p+rgbStart+1] *= a
		buf.Data[p+rgbStart+2] *= a
	})
}

// unpremultiplyMappedGroups handles the no-RGB case: whatever color-like
// channel groups are mapped (albedo, normal) are still unpremultiplied by
// alpha if alpha is present; it is a no-op otherwise.
func unpremultiplyMappedGroups(pool *workerpool.WorkerPool, buf *frame.Buffer, cm channels.Map) {
	if cm.Alpha == nil {
		return
	}
	var groups []int
	if cm.AlbedoStart != nil {
		groups = append(groups, *cm.AlbedoStart)
	}
	if cm.NormalStart != nil {
		groups = append(groups, *cm.NormalStart)
	}
	if len(groups) == 0 {
		return
	}
	alphaIdx := *cm.Alpha
	scalePixels(pool, buf, func(p int) {
		a := buf.Data[p+alphaIdx]
		if a == 0 {
			return
		}
		for _, g := range groups {
			buf.Data[p+g] /= a
			buf.Data[p+g+1] /= a
			buf.Data[p+g+2] /= a
		}
	})
}

// scalePixels partitions the buffer's rows across pool's workers, calling
// touch with the per-pixel channel offset for every pixel in the frame.
func scalePixels(pool *workerpool.WorkerPool, buf *frame.Buffer, touch func(pixelOffset int)) {
	width, nc := buf.Width, buf.NumChannels
	ranges := chunkRows(buf.Height, pool.Workers())
	work := make([]func(), len(ranges))
	for i, r := range ranges {
		r := r
		work[i] = func() {
			for y := r.Y0; y < r.Y1; y++ {
				base := y * width * nc
				for x := 0; x < width; x++ {
					touch(base + x*nc)
				}
			}
		}
	}
	pool.ExecuteAll(work)
}

// gatherTriplet extracts one channel group's three channels into a
// contiguous, per-pixel-interleaved buffer of length 3*width*height — the
// layout the denoiser's OIDN_FORMAT_FLOAT3 images expect.
func gatherTriplet(buf *frame.Buffer, start int) []float32 {
	n := buf.Width * buf.Height
	nc := buf.NumChannels
	out := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		p := i * nc
		o := i * 3
		out[o] = buf.Data[p+start]
		out[o+1] = buf.Data[p+start+1]
		out[o+2] = buf.Data[p+start+2]
	}
	return out
}

// gatherOptionalTriplet is gatherTriplet for a possibly-absent channel
// group.
func gatherOptionalTriplet(buf *frame.Buffer, start *int) ([]float32, bool) {
	if start == nil {
		return nil, false
	}
	return gatherTriplet(buf, *start), true
}

// scatterTriplet writes a gathered triplet buffer back into buf at the
// given channel group's start index, undoing gatherTriplet.
func scatterTriplet(pool *workerpool.WorkerPool, buf *frame.Buffer, start int, triplet []float32) {
	width, nc := buf.Width, buf.NumChannels
	ranges := chunkRows(buf.Height, pool.Workers())
	work := make([]func(), len(ranges))
	for i, r := range ranges {
		r := r
		work[i] = func() {
			for y := r.Y0; y < r.Y1; y++ {
				rowBase := y * width
				for x := 0; x < width; x++ {
					idx := rowBase + x
					p := idx*nc + start
					o := idx * 3
					buf.Data[p] = triplet[o]
					buf.Data[p+1] = triplet[o+1]
					buf.Data[p+2] = triplet[o+2]
				}
			}
		}
	}
	pool.ExecuteAll(work)
}
