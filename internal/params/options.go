package params

import (
	"log/slog"

	"github.com/gogpu/exrdisplay/internal/camera"
)

// Options holds the resolved, defaulted values of every named parameter
// the driver recognizes out of a Store. Unlike Store's raw lookups, this
// resolution step applies the driver's own fallback rules (see the
// recognized-options table) and logs NonFatalDegradation events for
// malformed values instead of silently dropping them.
type Options struct {
	PixelAspectRatio float32
	World2Screen     *camera.Mat4
	World2Camera     *camera.Mat4
	Near, Far        *float32
	Software         string
	Premultiply      bool
	Compression      string // "", "none", "rle", "zip", "piz", "pxr24"
	LineOrder        string // "", "increasing", "decreasing"
	TileSize         *[2]int32
	Denoise          float32
	AssociateAlpha   bool
}

var validCompression = map[string]bool{
	"none": true, "rle": true, "zip": true, "piz": true, "pxr24": true,
}

// Resolve reads the driver's recognized options out of s, applying
// defaults and logging a warning for any value that is present but
// malformed.
func Resolve(s *Store, log *slog.Logger) Options {
	opt := Options{
		PixelAspectRatio: 1,
		Premultiply:      true,
		Compression:      "zip",
		Denoise:          1,
		AssociateAlpha:   false,
	}

	if v, ok := s.Float32("PixelAspectRatio"); ok {
		opt.PixelAspectRatio = v
	}

	if v, ok := s.Float32Array("NP", 16); ok {
		m := camera.FromRowMajor(v)
		opt.World2Screen = &m
	}
	if v, ok := s.Float32Array("Nl", 16); ok {
		m := camera.FromRowMajor(v)
		opt.World2Camera = &m
	}

	if v, ok := s.Float32("near"); ok {
		opt.Near = &v
	}
	if v, ok := s.Float32("far"); ok {
		opt.Far = &v
	}

	if v, ok := s.String("Software"); ok {
		opt.Software = v
	}

	if v, ok := s.Int32("premultiply"); ok {
		opt.Premultiply = v != 0
	}

	if v, ok := s.String("compression"); ok {
		if validCompression[v] {
			opt.Compression = v
		} else {
			log.Warn("unknown compression value, defaulting to zip",
				"component", "params", "value", v)
			opt.Compression = "zip"
		}
	}

	if v, ok := s.String("line_order"); ok {
		switch v {
		case "increasing", "decreasing":
			opt.LineOrder = v
		default:
			log.Warn("unknown line_order value, ignoring",
				"component", "params", "value", v)
		}
	}

	if v, ok := s.Int32Array("tile_size", 2); ok {
		if v[0] > 0 && v[1] > 0 {
			opt.TileSize = &[2]int32{v[0], v[1]}
		} else {
			log.Warn("non-positive tile_size, ignoring scanline fallback applies",
				"component", "params", "width", v[0], "height", v[1])
		}
	}

	if v, ok := s.Float32("denoise"); ok {
		switch {
		case v < 0:
			opt.Denoise = 0
		case v > 1:
			opt.Denoise = 1
		default:
			opt.Denoise = v
		}
	}

	if v, ok := s.Int32("associatealpha"); ok {
		opt.AssociateAlpha = v != 0
	}

	return opt
}
