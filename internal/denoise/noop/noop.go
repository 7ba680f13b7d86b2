// Package noop registers a passthrough denoiser implementation that is
// always available: the universal fallback used whenever no real
// denoiser backend is linked in.
package noop

import "github.com/gogpu/exrdisplay/internal/denoise"

func init() {
	denoise.Register("noop", func() (denoise.Denoiser, error) {
		return &denoiser{}, nil
	})
}

type denoiser struct {
	width, height int
}

func (d *denoiser) Configure(width, height int, hdr bool) error {
	d.width, d.height = width, height
	return nil
}

func (d *denoiser) SetAlbedo(albedo []float32) {}

func (d *denoiser) SetAlbedoNormal(albedo, normal []float32) {}

// Run returns a copy of rgb unchanged.
func (d *denoiser) Run(rgb []float32) ([]float32, error) {
	out := make([]float32, len(rgb))
	copy(out, rgb)
	return out, nil
}

// RunInPlace is a no-op: rgb already holds the "denoised" result.
func (d *denoiser) RunInPlace(rgb []float32) error {
	return nil
}

func (d *denoiser) Close() {}
