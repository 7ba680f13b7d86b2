package camera

import (
	"math"
	"testing"
)

func almostEqualMat(a, b Mat4, tol float32) bool {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			d := a[r][c] - b[r][c]
			if d < 0 {
				d = -d
			}
			if d > tol {
				return false
			}
		}
	}
	return true
}

func TestIdentityMultiply(t *testing.T) {
	id := Identity()
	m := FromRowMajor([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	got := id.Multiply(m)
	if !almostEqualMat(got, m, 1e-6) {
		t.Errorf("Identity().Multiply(m) = %+v, want %+v", got, m)
	}
	got = m.Multiply(id)
	if !almostEqualMat(got, m, 1e-6) {
		t.Errorf("m.Multiply(Identity()) = %+v, want %+v", got, m)
	}
}

func TestInvertIdentity(t *testing.T) {
	inv, ok := Identity().Invert()
	if !ok {
		t.Fatal("Identity().Invert() ok = false, want true")
	}
	if !almostEqualMat(inv, Identity(), 1e-6) {
		t.Errorf("Identity().Invert() = %+v, want identity", inv)
	}
}

func TestInvertSingular(t *testing.T) {
	var zero Mat4
	_, ok := zero.Invert()
	if ok {
		t.Error("zero matrix Invert() ok = true, want false")
	}

	// Row of zeros makes this singular too.
	m := Identity()
	m[2] = [4]float32{0, 0, 0, 0}
	if _, ok := m.Invert(); ok {
		t.Error("matrix with a zero row Invert() ok = true, want false")
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Mat4{
		{1, 0, 0, 5},
		{0, 2, 0, -3},
		{0, 0, 1, 2},
		{0, 0, 0, 1},
	}
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert() ok = false, want true")
	}
	roundTrip := m.Multiply(inv)
	if !almostEqualMat(roundTrip, Identity(), 1e-4) {
		t.Errorf("m * inverse(m) = %+v, want identity", roundTrip)
	}
}

func TestTransformVec4(t *testing.T) {
	m := Mat4{
		{1, 0, 0, 10},
		{0, 1, 0, 20},
		{0, 0, 1, 30},
		{0, 0, 0, 1},
	}
	got := m.TransformVec4(Vec4{1, 1, 1, 1})
	want := Vec4{11, 21, 31, 1}
	if got != want {
		t.Errorf("TransformVec4 = %+v, want %+v", got, want)
	}
}

func TestDeriveFOVNilMatrices(t *testing.T) {
	m := Identity()
	if _, _, ok := DeriveFOV(nil, &m); ok {
		t.Error("DeriveFOV(nil, m) ok = true, want false")
	}
	if _, _, ok := DeriveFOV(&m, nil); ok {
		t.Error("DeriveFOV(m, nil) ok = true, want false")
	}
}

func TestDeriveFOVZeroW2NDC23(t *testing.T) {
	w2ndc := Identity()
	w2ndc[2][3] = 0
	w2cam := Identity()
	if _, _, ok := DeriveFOV(&w2ndc, &w2cam); ok {
		t.Error("DeriveFOV with w2ndc[2][3]==0 ok = true, want false")
	}
}

func TestDeriveFOVSingularW2NDC(t *testing.T) {
	w2ndc := Mat4{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 0, 0},
	}
	w2cam := Identity()
	if _, _, ok := DeriveFOV(&w2ndc, &w2cam); ok {
		t.Error("DeriveFOV with singular w2ndc ok = true, want false")
	}
}

func TestDeriveFOV45Degree(t *testing.T) {
	// w2ndc: identity except row2 has an off-diagonal 2 in column 3; its
	// inverse is the same matrix with that entry negated (still
	// upper-triangular with unit diagonal).
	w2ndc := Identity()
	w2ndc[2][3] = 2
	w2cam := Identity()

	h, v, ok := DeriveFOV(&w2ndc, &w2cam)
	if !ok {
		t.Fatal("DeriveFOV ok = false, want true")
	}
	// inverse(w2ndc) * w2cam = inverse(w2ndc); applied to (1,1,0,0) that
	// yields (1,1,0,0), so atan(1)*360/pi = 90 for both axes.
	want := float32(90)
	const tol = 1e-3
	if math.Abs(float64(h-want)) > tol {
		t.Errorf("horizontal FOV = %v, want %v", h, want)
	}
	if math.Abs(float64(v-want)) > tol {
		t.Errorf("vertical FOV = %v, want %v", v, want)
	}
}

func TestFromRowMajor(t *testing.T) {
	flat := make([]float32, 16)
	for i := range flat {
		flat[i] = float32(i)
	}
	m := FromRowMajor(flat)
	if m[0][0] != 0 || m[0][3] != 3 || m[1][0] != 4 || m[3][3] != 15 {
		t.Errorf("FromRowMajor produced unexpected layout: %+v", m)
	}
}
