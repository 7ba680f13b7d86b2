// Package denoise defines the denoiser capability (the Post-Processor's
// pluggable neural denoiser) as a narrow interface with registered
// implementations: a name-to-factory registry with a priority list,
// selected by what successfully constructs rather than a hardcoded
// type switch.
package denoise

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned by Open when no registered implementation is
// usable — the default build always registers the noop implementation,
// so this only surfaces if that registration is somehow removed.
var ErrUnavailable = errors.New("denoise: no denoiser implementation available")

// Denoiser is the capability every implementation provides. Run and
// RunInPlace both accept an interleaved RGB buffer (3 floats per pixel);
// RunInPlace is used when denoise_blend >= 1 and the caller has no further
// use for the original data.
type Denoiser interface {
	Configure(width, height int, hdr bool) error
	SetAlbedo(albedo []float32)
	SetAlbedoNormal(albedo, normal []float32)
	Run(rgb []float32) ([]float32, error)
	RunInPlace(rgb []float32) error
	Close()
}

// Factory constructs a Denoiser, failing if the backing implementation
// (e.g. the OIDN device) could not be initialized.
type Factory func() (Denoiser, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)

	// priority lists implementation names from most to least preferred.
	// oidn is only registered by builds tagged "oidn"; noop is always
	// registered as the universal fallback.
	priority = []string{"oidn", "noop"}
)

// Register adds a named denoiser implementation. Implementations call
// this from an init function, gated by a build tag where appropriate —
// see internal/denoise/oidn and internal/denoise/noop.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// Open selects the highest-priority registered implementation that
// constructs successfully.
func Open() (Denoiser, error) {
	mu.RLock()
	defer mu.RUnlock()
	for _, name := range priority {
		f, ok := factories[name]
		if !ok {
			continue
		}
		d, err := f()
		if err != nil || d == nil {
			continue
		}
		return d, nil
	}
	return nil, ErrUnavailable
}
