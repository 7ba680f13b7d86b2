package driver

import "github.com/gogpu/exrdisplay/internal/frame"

// QueryKind identifies which of the host's Query sub-questions is being
// asked. Any value other than QuerySize/QueryOverwrite maps to
// QueryUnsupported's response.
type QueryKind int

const (
	QuerySize QueryKind = iota
	QueryOverwrite
	QueryUnsupported
)

// SizeResponse answers QuerySize, mirroring the host's PtDspySizeInfo.
type SizeResponse struct {
	Width, Height uint64
	AspectRatio   float32
}

// OverwriteResponse answers QueryOverwrite, mirroring the host's
// PtDspyOverwriteInfo.
type OverwriteResponse struct {
	Overwrite bool
}

// defaultSize is returned for QuerySize when no session exists yet — the
// renderer asking "how big will the image be" before any Open call.
var defaultSize = SizeResponse{Width: 1920, Height: 1080, AspectRatio: 1.0}

// Query answers the two sub-questions the driver recognizes. Unlike Data
// and Close, a null or unknown handle is not a failure here: Size falls
// back to a default and Overwrite always answers "yes" regardless of
// whether a session exists — deliberately a non-destructive read (see
// DESIGN.md).
func (r *Registry) Query(id frame.SessionID, kind QueryKind) (any, error) {
	switch kind {
	case QuerySize:
		sess, ok := r.lookup(id)
		if !ok {
			return defaultSize, nil
		}
		sess.Mu.Lock()
		resp := SizeResponse{
			Width:       uint64(sess.Width),
			Height:      uint64(sess.Height),
			AspectRatio: sess.Camera.PixelAspect,
		}
		sess.Mu.Unlock()
		return resp, nil
	case QueryOverwrite:
		return OverwriteResponse{Overwrite: true}, nil
	default:
		return nil, unsupported("query: unsupported sub-question")
	}
}
