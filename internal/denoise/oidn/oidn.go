//go:build oidn

// Package oidn wraps Intel Open Image Denoise's C API behind the
// denoise.Denoiser capability interface. It is only compiled into builds
// tagged "oidn"; the default build links internal/denoise/noop instead
// and this real cgo wrapper is opt-in.
package oidn

/*
#cgo pkg-config: OpenImageDenoise
#include <OpenImageDenoise/oidn.h>
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/gogpu/exrdisplay/internal/denoise"
)

func init() {
	denoise.Register("oidn", func() (denoise.Denoiser, error) {
		return newDenoiser()
	})
}

type denoiser struct {
	device C.OIDNDevice
	filter C.OIDNFilter
	width, height int
	albedo, normal []float32
}

func newDenoiser() (*denoiser, error) {
	dev := C.oidnNewDevice(C.OIDN_DEVICE_TYPE_DEFAULT)
	if dev == nil {
		return nil, errors.New("oidn: failed to create device")
	}
	C.oidnCommitDevice(dev)
	if code := C.oidnGetDeviceError(dev, nil); code != C.OIDN_ERROR_NONE {
		C.oidnReleaseDevice(dev)
		return nil, errors.New("oidn: device error during initialization")
	}
	return &denoiser{device: dev}, nil
}

func (d *denoiser) Configure(width, height int, hdr bool) error {
	d.width, d.height = width, height

	filterType := C.CString("RT")
	defer C.free(unsafe.Pointer(filterType))
	filter := C.oidnNewFilter(d.device, filterType)
	if filter == nil {
		return errors.New("oidn: failed to create filter")
	}
	d.filter = filter

	hdrKey := C.CString("hdr")
	defer C.free(unsafe.Pointer(hdrKey))
	C.oidnSetFilterBool(d.filter, hdrKey, C.bool(hdr))
	return nil
}

func (d *denoiser) SetAlbedo(albedo []float32) {
	d.albedo = albedo
	d.normal = nil
}

func (d *denoiser) SetAlbedoNormal(albedo, normal []float32) {
	d.albedo = albedo
	d.normal = normal
}

func (d *denoiser) RunInPlace(rgb []float32) error {
	return d.run(rgb, rgb)
}

func (d *denoiser) Run(rgb []float32) ([]float32, error) {
	out := make([]float32, len(rgb))
	if err := d.run(rgb, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *denoiser) run(in, out []float32) error {
	if d.filter == nil {
		return errors.New("oidn: Configure was not called")
	}
	if len(in) == 0 || len(out) == 0 {
		return errors.New("oidn: empty buffer")
	}

	colorKey := C.CString("color")
	outputKey := C.CString("output")
	defer C.free(unsafe.Pointer(colorKey))
	defer C.free(unsafe.Pointer(outputKey))

	C.oidnSetSharedFilterImage(d.filter, colorKey, unsafe.Pointer(&in[0]),
		C.OIDN_FORMAT_FLOAT3, C.size_t(d.width), C.size_t(d.height), 0, 0, 0)
	C.oidnSetSharedFilterImage(d.filter, outputKey, unsafe.Pointer(&out[0]),
		C.OIDN_FORMAT_FLOAT3, C.size_t(d.width), C.size_t(d.height), 0, 0, 0)

	if d.albedo != nil && len(d.albedo) > 0 {
		albedoKey := C.CString("albedo")
		defer C.free(unsafe.Pointer(albedoKey))
		C.oidnSetSharedFilterImage(d.filter, albedoKey, unsafe.Pointer(&d.albedo[0]),
			C.OIDN_FORMAT_FLOAT3, C.size_t(d.width), C.size_t(d.height), 0, 0, 0)

		if d.normal != nil && len(d.normal) > 0 {
			normalKey := C.CString("normal")
			defer C.free(unsafe.Pointer(normalKey))
			C.oidnSetSharedFilterImage(d.filter, normalKey, unsafe.Pointer(&d.normal[0]),
				C.OIDN_FORMAT_FLOAT3, C.size_t(d.width), C.size_t(d.height), 0, 0, 0)
		}
	}

	C.oidnCommitFilter(d.filter)
	C.oidnExecuteFilter(d.filter)

	var msg *C.char
	if code := C.oidnGetDeviceError(d.device, &msg); code != C.OIDN_ERROR_NONE {
		return errors.New("oidn: " + C.GoString(msg))
	}
	return nil
}

func (d *denoiser) Close() {
	if d.filter != nil {
		C.oidnReleaseFilter(d.filter)
		d.filter = nil
	}
	if d.device != nil {
		C.oidnReleaseDevice(d.device)
		d.device = nil
	}
}
