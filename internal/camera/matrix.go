// Package camera holds the 4x4 matrix math needed to derive field-of-view
// metadata from the renderer's world-to-screen and world-to-camera
// transforms: a full 4x4 homogeneous matrix with Identity, Multiply, and
// Invert, generalized from a 2D affine transform to handle camera-to-clip
// projections.
package camera

import "math"

// Mat4 is a 4x4 matrix in row-major order: Mat4[row][col].
type Mat4 [4][4]float32

// Vec4 is a homogeneous 4-component vector.
type Vec4 [4]float32

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	var m Mat4
	for i := range m {
		m[i][i] = 1
	}
	return m
}

// FromRowMajor builds a Mat4 from a flat 16-element row-major slice — the
// layout the host delivers the NP/Nl camera parameters in.
func FromRowMajor(v []float32) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r][c] = v[r*4+c]
		}
	}
	return m
}

// Multiply returns m * other.
func (m Mat4) Multiply(other Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[r][k] * other[k][c]
			}
			out[r][c] = sum
		}
	}
	return out
}

// TransformVec4 applies the matrix to a column vector: m * v.
func (m Mat4) TransformVec4(v Vec4) Vec4 {
	var out Vec4
	for r := 0; r < 4; r++ {
		var sum float32
		for c := 0; c < 4; c++ {
			sum += m[r][c] * v[c]
		}
		out[r] = sum
	}
	return out
}

// Invert returns the inverse of m via Gauss-Jordan elimination with partial
// pivoting. ok is false if m is singular within numerical tolerance; the
// returned matrix is then the identity and must not be used by the caller.
// Callers must propagate a failed invert by skipping FOV derivation
// entirely, rather than writing a bogus identity transform's worth of FOV
// into the output file.
func (m Mat4) Invert() (inv Mat4, ok bool) {
	const epsilon = 1e-8

	// Augmented 4x8 matrix [m | I], solved in float64 for precision.
	var a [4][8]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			a[r][c] = float64(m[r][c])
		}
		a[r][4+r] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		maxAbs := math.Abs(a[col][col])
		for r := col + 1; r < 4; r++ {
			if v := math.Abs(a[r][col]); v > maxAbs {
				pivot, maxAbs = r, v
			}
		}
		if maxAbs < epsilon {
			return Identity(), false
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
		}

		pivotVal := a[col][col]
		for c := 0; c < 8; c++ {
			a[col][c] /= pivotVal
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			if factor == 0 {
				continue
			}
			for c := 0; c < 8; c++ {
				a[r][c] -= factor * a[col][c]
			}
		}
	}

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			inv[r][c] = float32(a[r][4+c])
		}
	}
	return inv, true
}

// DeriveFOV computes the horizontal and vertical field of view in degrees
// from the world-to-screen (NDC) and world-to-camera matrices:
//
//	M = inverse(w2ndc) * w2cam
//	v = M * (1, 1, 0, 0)
//	horizontal = atan(v.x) * 360/pi
//	vertical   = atan(v.y) * 360/pi
//
// ok is false — and both outputs must be discarded — if either matrix is
// nil, w2ndc[2][3] == 0, or the inverse fails.
func DeriveFOV(w2ndc, w2cam *Mat4) (horizontal, vertical float32, ok bool) {
	if w2ndc == nil || w2cam == nil {
		return 0, 0, false
	}
	if w2ndc[2][3] == 0 {
		return 0, 0, false
	}
	inv, invOK := w2ndc.Invert()
	if !invOK {
		return 0, 0, false
	}
	m := inv.Multiply(*w2cam)
	v := m.TransformVec4(Vec4{1, 1, 0, 0})
	horizontal = float32(math.Atan(float64(v[0])) * 360 / math.Pi)
	vertical = float32(math.Atan(float64(v[1])) * 360 / math.Pi)
	return horizontal, vertical, true
}
