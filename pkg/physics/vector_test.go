// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func nearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecNear(a, b Vector2D, tol float64) bool {
	return nearlyEqual(a.X, b.X, tol) && nearlyEqual(a.Y, b.Y, tol)
}

func TestVector2D_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Vector2D
		expected Vector2D
	}{
		{"add_mixed_signs", Vector2D{X: 5, Y: -3}.Add(Vector2D{X: -2, Y: 7}), Vector2D{X: 3, Y: 4}},
		{"sub_negative_result", Vector2D{X: 2, Y: 3}.Sub(Vector2D{X: 5, Y: 7}), Vector2D{X: -3, Y: -4}},
		{"scale_by_negative", Vector2D{X: 1.5, Y: -2}.Scale(-2), Vector2D{X: -3, Y: 4}},
		{"mul_componentwise", Vector2D{X: 2, Y: 3}.Mul(Vector2D{X: 4, Y: -1}), Vector2D{X: 8, Y: -3}},
		{"neg", Vector2D{X: 2, Y: -3}.Neg(), Vector2D{X: -2, Y: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestVector2D_Normalize(t *testing.T) {
	t.Run("three_four_five", func(t *testing.T) {
		n := Vector2D{X: 3, Y: 4}.Normalize()
		if !vecNear(n, Vector2D{X: 0.6, Y: 0.8}, epsilon) {
			t.Errorf("Expected (0.6, 0.8), got %v", n)
		}
	})

	t.Run("zero_vector_stays_zero", func(t *testing.T) {
		n := Vector2D{}.Normalize()
		if n != (Vector2D{}) {
			t.Errorf("Expected zero vector, got %v", n)
		}
	})

	t.Run("normalize_or_uses_fallback", func(t *testing.T) {
		n := Vector2D{X: 1e-9, Y: 0}.NormalizeOr(AxisX)
		if n != AxisX {
			t.Errorf("Expected fallback %v, got %v", AxisX, n)
		}
		if n.IsFinite() != true {
			t.Error("Expected finite fallback")
		}
	})

	t.Run("normalize_or_normal_case", func(t *testing.T) {
		n := Vector2D{X: 0, Y: -2}.NormalizeOr(AxisX)
		if !vecNear(n, Vector2D{X: 0, Y: -1}, epsilon) {
			t.Errorf("Expected (0, -1), got %v", n)
		}
	})
}

func TestVector2D_CrossAndPerp(t *testing.T) {
	if got := (Vector2D{X: 1, Y: 0}).Cross(Vector2D{X: 0, Y: 1}); got != 1 {
		t.Errorf("Expected x cross y = 1, got %v", got)
	}
	if got := (Vector2D{X: 0, Y: 1}).Cross(Vector2D{X: 1, Y: 0}); got != -1 {
		t.Errorf("Expected y cross x = -1, got %v", got)
	}

	// w x r is perpendicular to r and scaled by w
	r := Vector2D{X: 2, Y: 0}
	v := Perp(3, r)
	if v != (Vector2D{X: 0, Y: 6}) {
		t.Errorf("Expected (0, 6), got %v", v)
	}
	if v.Dot(r) != 0 {
		t.Errorf("Expected Perp to be orthogonal to r, dot = %v", v.Dot(r))
	}
}

func TestVector2D_RotateAndAngle(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		angle    float64
		expected Vector2D
	}{
		{"quarter_turn", Vector2D{X: 1, Y: 0}, math.Pi / 2, Vector2D{X: 0, Y: 1}},
		{"half_turn", Vector2D{X: 1, Y: 2}, math.Pi, Vector2D{X: -1, Y: -2}},
		{"negative_quarter", Vector2D{X: 0, Y: 1}, -math.Pi / 2, Vector2D{X: 1, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Rotate(tt.angle)
			if !vecNear(got, tt.expected, 1e-12) {
				t.Errorf("Rotate() = %v, expected %v", got, tt.expected)
			}
		})
	}

	v := FromAngle(math.Pi/3, 2)
	if !nearlyEqual(v.Length(), 2, epsilon) || !nearlyEqual(v.Angle(), math.Pi/3, epsilon) {
		t.Errorf("FromAngle round trip failed: %v", v)
	}
}

func TestBasis_MatchesRotate(t *testing.T) {
	for _, angle := range []float64{0, 0.3, math.Pi / 2, 2.5, -1.2} {
		ux, uy := Basis(angle)
		if !vecNear(ux, AxisX.Rotate(angle), 1e-12) {
			t.Errorf("angle %v: ux = %v, expected %v", angle, ux, AxisX.Rotate(angle))
		}
		if !vecNear(uy, Vector2D{Y: 1}.Rotate(angle), 1e-12) {
			t.Errorf("angle %v: uy = %v", angle, uy)
		}
	}
}
