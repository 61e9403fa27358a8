package math

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	dot := v1.Dot(v2)
	if dot != 32 {
		t.Errorf("Dot: expected 32, got %v", dot)
	}

	// Right x Up = Front in a right-handed system
	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 0)
	normalized := v.Normalize()
	if normalized != NewVec3(1, 0, 0) {
		t.Errorf("Normalize: expected (1,0,0), got %v", normalized)
	}

	length := NewVec3(1, 2, 2).Normalize().Length()
	if math.Abs(float64(length-1)) > 0.0001 {
		t.Errorf("Normalize: expected length 1, got %v", length)
	}

	if Vec3Zero.Normalize() != Vec3Zero {
		t.Errorf("Normalize: zero vector should stay zero")
	}
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expected := float32(0)
			if i == j {
				expected = 1
			}
			if m[i][j] != expected {
				t.Errorf("Identity: expected [%d][%d] = %v, got %v", i, j, expected, m[i][j])
			}
		}
	}
}

func TestMat4Multiplication(t *testing.T) {
	result := Mat4Identity().Mul(Mat4Identity())
	if result != Mat4Identity() {
		t.Errorf("Mul: identity * identity should be identity, got %v", result)
	}

	translated := Mat4Translation(NewVec3(1, 2, 3)).Mul(Mat4Identity())
	if translated[3][0] != 1 || translated[3][1] != 2 || translated[3][2] != 3 {
		t.Errorf("Mul: translation lost, got %v", translated)
	}
}

func TestMat4Orthographic(t *testing.T) {
	// the unit-quad projection used by the masked composite draw: it must
	// map (0,0) to clip (-1,-1) and (1,1) to clip (1,1)
	m := Mat4Orthographic(0, 1, 0, 1, -1, 1)

	x := m[0][0]*0 + m[3][0]
	y := m[1][1]*0 + m[3][1]
	if x != -1 || y != -1 {
		t.Errorf("Orthographic: corner (0,0) maps to (%v,%v), want (-1,-1)", x, y)
	}

	x = m[0][0]*1 + m[3][0]
	y = m[1][1]*1 + m[3][1]
	if x != 1 || y != 1 {
		t.Errorf("Orthographic: corner (1,1) maps to (%v,%v), want (1,1)", x, y)
	}
}
