// Package driver implements the Driver State Machine: it wraps the
// parameter store, channel map, frame assembler, post-processor, and
// encoder behind the four host callbacks and owns the opaque
// session-handle lifecycle. cmd/exrdisplay's cgo boundary does nothing but
// decode C values into the types this package expects and call into it —
// every state transition and error-code decision lives here.
package driver

import (
	"runtime/cgo"
	"sync"

	"github.com/gogpu/exrdisplay/internal/channels"
	"github.com/gogpu/exrdisplay/internal/encoder"
	"github.com/gogpu/exrdisplay/internal/frame"
	"github.com/gogpu/exrdisplay/internal/params"
	"github.com/gogpu/exrdisplay/internal/postprocess"
	"github.com/gogpu/exrdisplay/internal/session"
)

// Flags is the driver's own ABI-agnostic sentinel for the bits it wants
// the host to set in its flag word; cmd/exrdisplay translates these into
// the host's actual PkDspyFlags constants.
type Flags uint32

const FlagWantsScanLineOrder Flags = 1 << 0

// OpenRequest bundles the host's Open arguments, already decoded from C
// types by cmd/exrdisplay.
type OpenRequest struct {
	DriverName  string
	FileName    string
	Width       int
	Height      int
	NumChannels int
	RawParams   []params.RawParameter
	Formats     []channels.Format
	FloatTag    int32
}

// OpenResult is what a successful Open hands back to the host: the opaque
// handle and the flags to OR into the host's flag word.
type OpenResult struct {
	ID    frame.SessionID
	Flags Flags
}

// Registry owns every live session, keyed by the cgo.Handle-backed
// SessionID minted for it in Open. A handle resolves to nothing once
// Close has run: lookup returns null rather than crashing.
//
// The host ABI serializes callbacks per handle, so the map should never
// see concurrent writers for the same key; the mutex covers hosts that
// break that contract.
type Registry struct {
	mu       sync.Mutex
	sessions map[frame.SessionID]*session.Session
}

// NewRegistry constructs an empty registry. The zero value is also usable;
// NewRegistry exists so cmd/exrdisplay has an explicit construction point.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[frame.SessionID]*session.Session)}
}

// Open parses the
// parameter store, builds the channel map (forcing every format's sample
// type to req.FloatTag as a side effect), allocates the session's
// framebuffer, and mints the opaque handle the host will use for every
// subsequent callback.
func (r *Registry) Open(req OpenRequest) (OpenResult, error) {
	if req.FileName == "" {
		return OpenResult{}, badParams("open: null or empty output filename")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return OpenResult{}, badParams("open: non-positive image dimensions")
	}

	store := params.Parse(req.RawParams)
	log := sessionLogger(req.DriverName, req.FileName)
	opt := params.Resolve(store, log)

	cm := channels.BuildMap(req.Formats, req.FloatTag)

	numChannels := req.NumChannels
	if numChannels <= 0 {
		numChannels = len(req.Formats)
	}

	sess := session.New(req.Width, req.Height, numChannels, req.FileName, log)
	sess.ChannelMap = cm
	sess.Camera = session.CameraMetadata{
		PixelAspect:  opt.PixelAspectRatio,
		World2Screen: opt.World2Screen,
		World2Camera: opt.World2Camera,
		Near:         opt.Near,
		Far:          opt.Far,
		Software:     opt.Software,
	}
	sess.Encoding = session.EncodingPolicy{
		Premultiply: opt.Premultiply,
		Compression: opt.Compression,
		LineOrder:   opt.LineOrder,
		TileSize:    opt.TileSize,
	}
	sess.DenoiseBlend = opt.Denoise

	id := frame.FromHandle(cgo.NewHandle(sess))

	r.mu.Lock()
	if r.sessions == nil {
		r.sessions = make(map[frame.SessionID]*session.Session)
	}
	r.sessions[id] = sess
	r.mu.Unlock()

	log.Info("session opened", "component", "driver",
		"width", req.Width, "height", req.Height, "channels", numChannels)

	return OpenResult{ID: id, Flags: FlagWantsScanLineOrder}, nil
}

// lookup resolves id to its session, or reports it unknown. A zero,
// never-issued, or already-closed handle resolves to (nil, false) rather
// than a crash: Close deletes both the registry entry and the backing
// cgo.Handle, so reuse after Close behaves exactly like a handle the host
// never received.
func (r *Registry) lookup(id frame.SessionID) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Data copies the tile into
// the session's framebuffer at the current write cursor, failing fatally
// only if the write would overrun the buffer.
func (r *Registry) Data(id frame.SessionID, xMin, xMax, yMin, yMax int, tile []float32) error {
	sess, ok := r.lookup(id)
	if !ok {
		return badParams("data: unknown or closed handle")
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	if sess.State == session.StateOpen {
		sess.State = session.StateReceiving
	}

	if err := sess.Buffer.WriteTile(xMin, xMax, yMin, yMax, tile); err != nil {
		return undefined("data: " + err.Error())
	}
	return nil
}

// Close runs the post-processing pipeline and then the encoder,
// exactly once and one-shot: Post-Processor state moves
// Idle -> Processing -> Done with no back-transition, and the session is
// destroyed (its handle deleted) once encoding has been attempted.
//
// A missing RGB or alpha mapping skips encoding with a log line; the
// driver still reports success to the host, since the framebuffer was
// legitimately consumed and there is no channel here to carry a
// structured error back.
func (r *Registry) Close(id frame.SessionID) error {
	sess, ok := r.lookup(id)
	if !ok {
		return badParams("close: unknown or already-closed handle")
	}

	sess.Mu.Lock()
	sess.State = session.StateClosing
	sess.Mu.Unlock()

	postprocess.Run(sess)

	var result error
	if sess.ChannelMap.RGBStart != nil && sess.ChannelMap.Alpha != nil {
		if err := encoder.Write(sess); err != nil {
			sess.Log.Error("encode failed", "component", "encoder", "error", err)
			result = undefined("encode failed: " + err.Error())
		}
	} else {
		sess.Log.Warn("skipping encode: rgb or alpha channel not mapped", "component", "encoder")
	}

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	id.Handle().Delete()

	sess.Mu.Lock()
	sess.State = session.StateDestroyed
	sess.Mu.Unlock()

	return result
}
