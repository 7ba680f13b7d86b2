// Package channels implements the Channel Map: matching the
// host's declared output format array against the channel groups the
// driver understands, and forcing every channel's sample type to 32-bit
// float regardless of what the host requested.
package channels

// Format mirrors one entry of the host's PtDspyDevFormat array. Type
// points into the host's own array slot so BuildMap can force it to the
// float32 tag in place, exactly as the original ABI expects (the host
// reads back the overwritten type after Open returns).
type Format struct {
	Name string
	Type *int32
}

// Map records where each recognized channel group starts within the
// per-pixel channel layout. A nil field means that group was not present
// in the host's format array.
type Map struct {
	RGBStart    *int
	Alpha       *int
	AlbedoStart *int
	NormalStart *int
}

const (
	rgbR    = "r"
	alphaCh = "a"
	albedo0 = "albedo.000.r"
	normal0 = "N_world.000.x"
)

// BuildMap scans formats in order, forcing every sample type to floatTag
// (the host's 32-bit float constant) and recording the index of each
// recognized channel group's first channel. RGB, albedo, and normal are
// each recognized by their leading channel name and assumed to occupy the
// three contiguous channels starting at that index.
func BuildMap(formats []Format, floatTag int32) Map {
	var m Map
	for i := range formats {
		if formats[i].Type != nil {
			*formats[i].Type = floatTag
		}
		idx := i
		switch formats[i].Name {
		case rgbR:
			m.RGBStart = &idx
		case alphaCh:
			m.Alpha = &idx
		case albedo0:
			m.AlbedoStart = &idx
		case normal0:
			m.NormalStart = &idx
		}
	}
	return m
}
