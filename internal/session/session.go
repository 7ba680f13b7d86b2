// Package session holds per-frame driver state (the data half of the
// Driver State Machine): the framebuffer, the resolved channel map,
// camera metadata destined for the output file's attributes, and the
// encoding policy the host's parameters selected.
package session

import (
	"log/slog"
	"sync"

	"github.com/gogpu/exrdisplay/internal/camera"
	"github.com/gogpu/exrdisplay/internal/channels"
	"github.com/gogpu/exrdisplay/internal/frame"
)

// PostState tracks the Post-Processor's one-shot pipeline:
// it starts Idle, moves to Processing when Close triggers the pipeline,
// and ends at Done whether or not every step succeeded.
type PostState int

const (
	PostIdle PostState = iota
	PostProcessing
	PostDone
)

func (s PostState) String() string {
	switch s {
	case PostIdle:
		return "idle"
	case PostProcessing:
		return "processing"
	case PostDone:
		return "done"
	default:
		return "unknown"
	}
}

// DriverState tracks the top-level, host-visible state machine: which of
// the four host callbacks are currently legal for this session.
// Unlike PostState, which is internal to the Post-Processor, DriverState
// is owned and advanced by internal/driver.
type DriverState int

const (
	StateOpen DriverState = iota
	StateReceiving
	StateClosing
	StateDestroyed
)

func (s DriverState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateReceiving:
		return "receiving"
	case StateClosing:
		return "closing"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// CameraMetadata carries the camera-related parameters through to the
// Encoder, which writes them as output file attributes.
type CameraMetadata struct {
	PixelAspect  float32
	World2Screen *camera.Mat4
	World2Camera *camera.Mat4
	Near, Far    *float32
	Software     string
}

// EncodingPolicy carries the output-format parameters through to the
// Encoder.
type EncodingPolicy struct {
	Premultiply bool
	Compression string
	LineOrder   string
	TileSize    *[2]int32
}

// Session is the per-Open driver state: one instance exists for the
// lifetime between a host's Open call and the matching Close call.
type Session struct {
	// Mu guards mutation of this Session across Data and Close calls
	// from hosts that do not serialize their callbacks per handle.
	Mu sync.Mutex

	Width, Height, NumChannels int
	Buffer                     *frame.Buffer
	ChannelMap                 channels.Map
	Camera                     CameraMetadata
	Encoding                   EncodingPolicy

	// DenoiseBlend is the resolved "denoise" parameter: 0 disables
	// denoising entirely, 1 replaces the RGB buffer outright, and values
	// in between blend linearly between original and denoised output.
	DenoiseBlend float32

	FileName string
	Post     PostState
	State    DriverState
	Log      *slog.Logger
}

// New constructs a Session with its framebuffer pre-allocated and its
// post-processing state machine at Idle.
func New(width, height, numChannels int, fileName string, log *slog.Logger) *Session {
	return &Session{
		Width:        width,
		Height:       height,
		NumChannels:  numChannels,
		Buffer:       frame.NewBuffer(width, height, numChannels),
		FileName:     fileName,
		Encoding:     EncodingPolicy{Premultiply: true, Compression: "zip"},
		DenoiseBlend: 1,
		State:        StateOpen,
		Log:          log,
	}
}
