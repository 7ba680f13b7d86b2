// Package encoder implements the Encoder: writing the
// session's post-processed framebuffer to a multi-channel HDR image file,
// with the camera, clip-plane, and compression metadata. It is a thin
// adapter around github.com/mrjoshuak/go-openexr's types, with no
// business logic bleeding into the call site.
package encoder

import (
	"errors"
	"fmt"

	exr "github.com/mrjoshuak/go-openexr"

	"github.com/gogpu/exrdisplay/internal/camera"
	"github.com/gogpu/exrdisplay/internal/session"
	"github.com/gogpu/exrdisplay/internal/workerpool"
)

// ErrChannelsUnmapped is returned by Write when the session's channel map
// lacks either RGB or alpha. This is the Encoder's designed refusal, not
// a failure: internal/driver.Close checks the same condition before
// calling Write, logs a warning, and still reports success to the host.
var ErrChannelsUnmapped = errors.New("encoder: rgb or alpha channel not mapped, skipping encode")

// Write assembles and persists sess.Buffer as an RGBA 32-bit-float image
// at sess.FileName. It is the sole entry point into this package and is
// called once, at Close, after the Post-Processor has run.
func Write(sess *session.Session) error {
	cm := sess.ChannelMap
	if cm.RGBStart == nil || cm.Alpha == nil {
		return ErrChannelsUnmapped
	}

	header := buildHeader(sess)
	header.Channels = rgbaChannelList()

	pool := workerpool.NewWorkerPool(0)
	defer pool.Close()
	r, g, b, a := gatherPlanarRGBA(sess, pool)

	fb := exr.NewFrameBuffer()
	fb.Set("R", exr.NewSliceFromFloat32(r, sess.Width, sess.Height))
	fb.Set("G", exr.NewSliceFromFloat32(g, sess.Width, sess.Height))
	fb.Set("B", exr.NewSliceFromFloat32(b, sess.Width, sess.Height))
	fb.Set("A", exr.NewSliceFromFloat32(a, sess.Width, sess.Height))

	out, err := exr.NewOutputFile(sess.FileName, header)
	if err != nil {
		return fmt.Errorf("encoder: create output file: %w", err)
	}
	defer out.Close()

	out.SetFrameBuffer(fb)
	if err := out.WritePixels(sess.Height); err != nil {
		return fmt.Errorf("encoder: write pixels: %w", err)
	}

	sess.Log.Info("wrote output image",
		"component", "encoder",
		"path", sess.FileName,
		"width", sess.Width,
		"height", sess.Height,
		"compression", sess.Encoding.Compression)
	return nil
}

// buildHeader translates the session's camera metadata and encoding
// policy into an exr.Header, including the derived field-of-view
// attributes computed by internal/camera.
func buildHeader(sess *session.Session) *exr.Header {
	h := exr.NewHeader(sess.Width, sess.Height)
	h.PixelAspectRatio = sess.Camera.PixelAspect
	h.Compression = compressionFor(sess.Encoding.Compression)
	if lo, ok := lineOrderFor(sess.Encoding.LineOrder); ok {
		h.LineOrder = lo
	}
	if sess.Encoding.TileSize != nil {
		h.Tiled = true
		h.TileDescription = &exr.TileDescription{
			XSize: uint32(sess.Encoding.TileSize[0]),
			YSize: uint32(sess.Encoding.TileSize[1]),
			Mode:  exr.TileModeOneLevel,
		}
	}
	setCameraAttributes(h, sess.Camera)
	return h
}

// setCameraAttributes writes the camera/clip/software attributes the
// renderer supplied, plus the horizontal/vertical FOV derived from the
// world-to-screen and world-to-camera matrices when both are present.
func setCameraAttributes(h *exr.Header, cam session.CameraMetadata) {
	if cam.World2Camera != nil {
		h.SetM44fAttribute("worldToCamera", toM44f(*cam.World2Camera))
	}
	if cam.World2Screen != nil {
		h.SetM44fAttribute("worldToNDC", toM44f(*cam.World2Screen))
	}
	if cam.Near != nil {
		h.SetFloatAttribute("nearClipPlane", *cam.Near)
	}
	if cam.Far != nil {
		h.SetFloatAttribute("farClipPlane", *cam.Far)
	}
	if cam.Software != "" {
		h.SetStringAttribute("software", cam.Software)
	}
	if hFov, vFov, ok := camera.DeriveFOV(cam.World2Screen, cam.World2Camera); ok {
		h.SetFloatAttribute("cameraFovH", hFov)
		h.SetFloatAttribute("cameraFovV", vFov)
	}
}

func toM44f(m camera.Mat4) exr.M44f {
	var out exr.M44f
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][c] = m[r][c]
		}
	}
	return out
}

// rgbaChannelList builds the fixed four-channel, full-resolution,
// 32-bit-float channel list every output image carries: RGBA, 32-bit
// float.
func rgbaChannelList() *exr.ChannelList {
	cl := exr.NewChannelList()
	for _, name := range [4]string{"R", "G", "B", "A"} {
		cl.Insert(name, exr.Channel{Type: exr.PixelTypeFloat, XSampling: 1, YSampling: 1})
	}
	return cl
}

var validCompression = map[string]exr.Compression{
	"none":  exr.CompressionNone,
	"rle":   exr.CompressionRLE,
	"piz":   exr.CompressionPIZ,
	"pxr24": exr.CompressionPXR24,
}

// compressionFor maps the resolved "compression" parameter to the
// library's enum. internal/params.Resolve has already normalized unknown
// values to "zip" with a warning, so the fallback here only matters for
// the explicit "zip" case itself: the recognized ZIP16 variant is
// go-openexr's 16-scanline exr.CompressionZIP.
func compressionFor(name string) exr.Compression {
	if c, ok := validCompression[name]; ok {
		return c
	}
	return exr.CompressionZIP
}

// lineOrderFor maps the resolved "line_order" parameter to the library's
// enum. ok is false when the policy left line order unspecified, in which
// case the header keeps its format default.
func lineOrderFor(name string) (exr.LineOrder, bool) {
	switch name {
	case "increasing":
		return exr.LineOrderIncreasingY, true
	case "decreasing":
		return exr.LineOrderDecreasingY, true
	default:
		return 0, false
	}
}
