// Command exrdisplay is the cgo boundary the host renderer actually
// dlopens. It is built with `go build -buildmode=c-shared` and declares no
// business logic of its own: every exported function here does nothing
// but convert a host C value into the Go-native type internal/driver
// expects, call into the registry, and convert the result back.
//
// Building requires the renderer SDK's ndspy.h on the include path and its
// lib directory on the link path — set CGO_CFLAGS/CGO_LDFLAGS (e.g.
// `CGO_CFLAGS=-I$DELIGHT/include`) the same way the original Rust crate's
// build.rs pointed bindgen at $DELIGHT/include.
package main

/*
#include <ndspy.h>
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"log/slog"
	"os"
	"unsafe"

	"github.com/gogpu/exrdisplay/internal/channels"
	"github.com/gogpu/exrdisplay/internal/diag"
	"github.com/gogpu/exrdisplay/internal/driver"
	"github.com/gogpu/exrdisplay/internal/frame"
	"github.com/gogpu/exrdisplay/internal/params"

	_ "github.com/gogpu/exrdisplay/internal/denoise/noop" // always-available denoiser fallback
	_ "github.com/gogpu/exrdisplay/internal/denoise/oidn" // real denoiser; build with: go build -tags oidn
)

// main is required by -buildmode=c-shared but never runs: the host
// process is the renderer, not us.
func main() {}

// registry holds every session this plugin instance is serving. A single
// image per plugin instance is the expected usage, but the registry
// itself places no such limit — nothing about it assumes exactly one
// handle.
var registry = driver.NewRegistry()

func init() {
	if os.Getenv("EXRDISPLAY_DEBUG") != "" {
		diag.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}
}

// guard converts a panic into the host's Undefined error code; a panic
// must never unwind across the C ABI boundary.
func guard(ret *C.PtDspyError) {
	if r := recover(); r != nil {
		diag.Logger().Error("panic at ABI boundary", "panic", r)
		*ret = C.PkDspyErrorUndefined
	}
}

//export DspyImageOpen
func DspyImageOpen(
	imageHandle *C.PtDspyImageHandle,
	driverName *C.char,
	outputFileName *C.char,
	width C.int,
	height C.int,
	paramCount C.int,
	parameters *C.UserParameter,
	formatCount C.int,
	format *C.PtDspyDevFormat,
	flagStuff *C.PtFlagStuff,
) (ret C.PtDspyError) {
	defer guard(&ret)
	if imageHandle == nil || outputFileName == nil {
		return C.PkDspyErrorBadParams
	}

	req := driver.OpenRequest{
		DriverName:  goStringOrEmpty(driverName),
		FileName:    C.GoString(outputFileName),
		Width:       int(width),
		Height:      int(height),
		NumChannels: int(formatCount),
		RawParams:   decodeParameters(paramCount, parameters),
		Formats:     decodeFormats(formatCount, format),
		FloatTag:    int32(C.PkDspyFloat32),
	}

	result, err := registry.Open(req)
	if err != nil {
		return toErrorCode(err)
	}

	*imageHandle = C.PtDspyImageHandle(unsafe.Pointer(uintptr(result.ID)))
	if flagStuff != nil && result.Flags&driver.FlagWantsScanLineOrder != 0 {
		flagStuff.flags |= C.int(C.PkDspyFlagsWantsScanLineOrder)
	}
	return C.PkDspyErrorNone
}

//export DspyImageQuery
func DspyImageQuery(
	imageHandle C.PtDspyImageHandle,
	queryType C.PtDspyQueryType,
	dataLen C.int,
	data unsafe.Pointer,
) (ret C.PtDspyError) {
	defer guard(&ret)
	if data == nil {
		return C.PkDspyErrorBadParams
	}
	id := handleToSessionID(imageHandle)

	switch queryType {
	case C.PkSizeQuery:
		if int(dataLen) < int(unsafe.Sizeof(C.PtDspySizeInfo{})) {
			return C.PkDspyErrorBadParams
		}
		resp, err := registry.Query(id, driver.QuerySize)
		if err != nil {
			return toErrorCode(err)
		}
		size := resp.(driver.SizeResponse)
		out := (*C.PtDspySizeInfo)(data)
		out.width = C.PtDspyUnsigned64(size.Width)
		out.height = C.PtDspyUnsigned64(size.Height)
		out.aspectRatio = C.PtDspyFloat32(size.AspectRatio)
		return C.PkDspyErrorNone

	case C.PkOverwriteQuery:
		if int(dataLen) < int(unsafe.Sizeof(C.PtDspyOverwriteInfo{})) {
			return C.PkDspyErrorBadParams
		}
		resp, err := registry.Query(id, driver.QueryOverwrite)
		if err != nil {
			return toErrorCode(err)
		}
		out := (*C.PtDspyOverwriteInfo)(data)
		if resp.(driver.OverwriteResponse).Overwrite {
			out.overwrite = 1
		} else {
			out.overwrite = 0
		}
		out.unused = 0
		return C.PkDspyErrorNone

	default:
		_, err := registry.Query(id, driver.QueryUnsupported)
		return toErrorCode(err)
	}
}

//export DspyImageData
func DspyImageData(
	imageHandle C.PtDspyImageHandle,
	xMin C.int,
	xMaxPlusOne C.int,
	yMin C.int,
	yMaxPlusOne C.int,
	entrySize C.int,
	data *C.uchar,
) (ret C.PtDspyError) {
	defer guard(&ret)
	if imageHandle == nil || data == nil {
		return C.PkDspyErrorBadParams
	}
	id := handleToSessionID(imageHandle)

	// entrySize is bytes per pixel; every channel is forced to 32-bit
	// float at Open, so the float count per pixel is entrySize/4.
	floatsPerPixel := int(entrySize) / 4
	width := int(xMaxPlusOne - xMin)
	height := int(yMaxPlusOne - yMin)
	count := floatsPerPixel * width * height
	if count < 0 {
		return C.PkDspyErrorBadParams
	}

	var tile []float32
	if count > 0 {
		tile = unsafe.Slice((*float32)(unsafe.Pointer(data)), count)
	}

	if err := registry.Data(id, int(xMin), int(xMaxPlusOne), int(yMin), int(yMaxPlusOne), tile); err != nil {
		return toErrorCode(err)
	}
	return C.PkDspyErrorNone
}

//export DspyImageClose
func DspyImageClose(imageHandle C.PtDspyImageHandle) (ret C.PtDspyError) {
	defer guard(&ret)
	if imageHandle == nil {
		return C.PkDspyErrorBadParams
	}
	id := handleToSessionID(imageHandle)
	if err := registry.Close(id); err != nil {
		return toErrorCode(err)
	}
	return C.PkDspyErrorNone
}

func handleToSessionID(h C.PtDspyImageHandle) frame.SessionID {
	return frame.SessionID(uintptr(unsafe.Pointer(h)))
}

func goStringOrEmpty(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func toErrorCode(err error) C.PtDspyError {
	var de *driver.DriverError
	if errors.As(err, &de) {
		switch de.Code {
		case driver.ErrNone:
			return C.PkDspyErrorNone
		case driver.ErrBadParams:
			return C.PkDspyErrorBadParams
		case driver.ErrUnsupported:
			return C.PkDspyErrorUnsupported
		}
	}
	return C.PkDspyErrorUndefined
}

// decodeParameters builds the Go-native mirror of the host's UserParameter
// array that internal/params.Parse expects. Entries with a null value
// pointer or an unrecognized vtype are dropped as absent.
func decodeParameters(count C.int, raw *C.UserParameter) []params.RawParameter {
	if count <= 0 || raw == nil {
		return nil
	}
	entries := unsafe.Slice(raw, int(count))
	out := make([]params.RawParameter, 0, len(entries))
	for _, p := range entries {
		name := goStringOrEmpty(p.name)
		if name == "" || p.value == nil {
			continue
		}
		n := int(p.vcount)
		if n <= 0 {
			n = 1
		}
		rp := params.RawParameter{Name: name, Type: byte(p.vtype)}
		switch byte(p.vtype) {
		case 'i':
			rp.Int32Values = append([]int32(nil), unsafe.Slice((*int32)(p.value), n)...)
		case 'f':
			rp.Float32Values = append([]float32(nil), unsafe.Slice((*float32)(p.value), n)...)
		case 's':
			ptrs := unsafe.Slice((**C.char)(p.value), n)
			rp.StringValues = make([]string, n)
			for i, sp := range ptrs {
				rp.StringValues[i] = goStringOrEmpty(sp)
			}
		default:
			continue
		}
		out = append(out, rp)
	}
	return out
}

// decodeFormats builds the Go-native mirror of the host's PtDspyDevFormat
// array. Each Format's Type field points directly into the host's own
// array slot, so internal/channels.BuildMap's in-place float32-forcing
// writes back into memory the host re-reads after Open returns.
func decodeFormats(count C.int, formats *C.PtDspyDevFormat) []channels.Format {
	if count <= 0 || formats == nil {
		return nil
	}
	entries := unsafe.Slice(formats, int(count))
	out := make([]channels.Format, len(entries))
	for i := range entries {
		out[i] = channels.Format{
			Name: goStringOrEmpty(entries[i].name),
			Type: (*int32)(unsafe.Pointer(&entries[i]._type)),
		}
	}
	return out
}
