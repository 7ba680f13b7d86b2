// Package postprocess implements the Post-Processor: the
// unpremultiply, guided-denoise, and re-premultiply pipeline that runs
// once, at Close, over the assembled framebuffer. Per-row work is spread
// across internal/workerpool the same way internal/encoder distributes its
// planar gather.
package postprocess

import (
	"github.com/gogpu/exrdisplay/internal/denoise"
	"github.com/gogpu/exrdisplay/internal/session"
	"github.com/gogpu/exrdisplay/internal/workerpool"
)

// epsilon is the smallest denoise_blend considered "on"; values at or
// below it skip denoising entirely as if the feature were disabled.
const epsilon = 1e-6

// Run executes the full pipeline over sess.Buffer, updating sess.Post as
// it progresses. It is one-shot: the driver state machine guarantees
// Close (and therefore Run) fires exactly once per session.
func Run(sess *session.Session) {
	sess.Post = session.PostProcessing
	defer func() { sess.Post = session.PostDone }()

	buf := sess.Buffer
	cm := sess.ChannelMap
	log := sess.Log

	pool := workerpool.NewWorkerPool(0)
	defer pool.Close()

	if cm.RGBStart == nil {
		if !sess.Encoding.Premultiply {
			unpremultiplyMappedGroups(pool, buf, cm)
		}
		return
	}

	if cm.Alpha != nil {
		unpremultiplyRGB(pool, buf, cm)
	}

	if sess.DenoiseBlend > epsilon {
		rgb := gatherTriplet(buf, *cm.RGBStart)
		albedo, hasAlbedo := gatherOptionalTriplet(buf, cm.AlbedoStart)
		// Normal is only meaningful paired with albedo.
		var normal []float32
		hasNormal := false
		if hasAlbedo {
			normal, hasNormal = gatherOptionalTriplet(buf, cm.NormalStart)
		}

		if err := applyDenoise(sess, rgb, albedo, normal, hasAlbedo, hasNormal); err != nil {
			log.Warn("denoiser failed, preserving original RGB",
				"component", "postprocess", "error", err)
		} else {
			scatterTriplet(pool, buf, *cm.RGBStart, rgb)
		}
	}

	if sess.Encoding.Premultiply && cm.Alpha != nil {
		premultiplyRGB(pool, buf, cm)
	}
}

// applyDenoise runs the denoiser over rgb in place (full replacement) or
// blends a second denoised buffer into rgb (partial blend), depending on
// sess.DenoiseBlend.
func applyDenoise(sess *session.Session, rgb, albedo, normal []float32, hasAlbedo, hasNormal bool) error {
	d, err := denoise.Open()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Configure(sess.Buffer.Width, sess.Buffer.Height, true); err != nil {
		return err
	}
	if hasAlbedo {
		if hasNormal {
			d.SetAlbedoNormal(albedo, normal)
		} else {
			d.SetAlbedo(albedo)
		}
	}

	if sess.DenoiseBlend >= 1 {
		return d.RunInPlace(rgb)
	}

	denoised, err := d.Run(rgb)
	if err != nil {
		return err
	}
	blend(rgb, denoised, sess.DenoiseBlend)
	return nil
}

// blend linearly interpolates denoised into orig in place by t in [0, 1).
func blend(orig, denoised []float32, t float32) {
	for i := range orig {
		orig[i] += (denoised[i] - orig[i]) * t
	}
}

type rowRange struct{ Y0, Y1 int }

func chunkRows(height, workers int) []rowRange {
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

