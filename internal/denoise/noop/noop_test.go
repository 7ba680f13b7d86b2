package noop

import (
	"testing"

	"github.com/gogpu/exrdisplay/internal/denoise"
)

func TestNoopRunReturnsCopy(t *testing.T) {
	d := &denoiser{}
	in := []float32{1, 2, 3}
	out, err := d.Run(in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	out[0] = 99
	if in[0] == 99 {
		t.Error("Run() must return an independent copy, not an alias")
	}
}

func TestNoopRunInPlaceLeavesInputUnchanged(t *testing.T) {
	d := &denoiser{}
	rgb := []float32{1, 2, 3}
	if err := d.RunInPlace(rgb); err != nil {
		t.Fatalf("RunInPlace() error = %v", err)
	}
	want := []float32{1, 2, 3}
	for i := range want {
		if rgb[i] != want[i] {
			t.Errorf("rgb[%d] = %v, want %v", i, rgb[i], want[i])
		}
	}
}

func TestNoopRegisteredUnderNoop(t *testing.T) {
	// The init() in this package must have registered "noop" with the
	// shared denoise registry so Open() always has a fallback.
	d, err := denoise.Open()
	if err != nil {
		t.Fatalf("denoise.Open() error = %v", err)
	}
	if d == nil {
		t.Fatal("denoise.Open() returned nil Denoiser with nil error")
	}
	d.Close()
}
