package encoder

import (
	"github.com/gogpu/exrdisplay/internal/session"
	"github.com/gogpu/exrdisplay/internal/workerpool"
)

// gatherPlanarRGBA extracts the RGB and alpha channels from sess.Buffer's
// interleaved layout into four separate, contiguous planar buffers — the
// per-channel layout exr.FrameBuffer slices expect. Work is partitioned by
// row across pool's workers, since pixel sampling is embarrassingly
// parallel across cores.
func gatherPlanarRGBA(sess *session.Session, pool *workerpool.WorkerPool) (r, g, b, a []float32) {
	width, height, nc := sess.Width, sess.Height, sess.NumChannels
	n := width * height
	r = make([]float32, n)
	g = make([]float32, n)
	b = make([]float32, n)
	a = make([]float32, n)

	rgbStart := *sess.ChannelMap.RGBStart
	alphaIdx := *sess.ChannelMap.Alpha
	data := sess.Buffer.Data

	ranges := rowChunks(height, pool.Workers())
	work := make([]func(), len(ranges))
	for i, rg := range ranges {
		rg := rg
		work[i] = func() {
			for y := rg.y0; y < rg.y1; y++ {
				rowBase := y * width
				for x := 0; x < width; x++ {
					idx := rowBase + x
					p := idx * nc
					r[idx] = data[p+rgbStart]
					g[idx] = data[p+rgbStart+1]
					b[idx] = data[p+rgbStart+2]
					a[idx] = data[p+alphaIdx]
				}
			}
		}
	}
	pool.ExecuteAll(work)
	return r, g, b, a
}

type rowRange struct{ y0, y1 int }

// rowChunks partitions [0, height) into worker-sized row ranges, aiming
// for roughly 4 chunks per worker the same way internal/postprocess does.
func rowChunks(height, workers int) []rowRange {
	if workers <= 0 {
		workers = 1
	}
	chunks := workers * 4
	if chunks > height {
		chunks = height
	}
	if chunks < 1 {
		chunks = 1
	}
	rowsPer := (height + chunks - 1) / chunks
	out := make([]rowRange, 0, chunks)
	for y := 0; y < height; y += rowsPer {
		y1 := y + rowsPer
		if y1 > height {
			y1 = height
		}
		out = append(out, rowRange{y, y1})
	}
	return out
}
