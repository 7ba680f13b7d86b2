//go:build !oidn

package oidn

import "github.com/gogpu/exrdisplay/internal/denoise"

// init registers a nil-returning factory when the oidn tag is not set.
// This allows code to compile without the OIDN library while still
// letting denoise.Open fall through to the noop implementation.
func init() {
	denoise.Register("oidn", func() (denoise.Denoiser, error) {
		return nil, nil
	})
}
