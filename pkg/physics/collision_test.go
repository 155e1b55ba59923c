// pkg/physics/collision_test.go
package physics

import (
	"math"
	"testing"
)

func TestCircleCircle(t *testing.T) {
	tests := []struct {
		name        string
		a, b        Circle
		expectHit   bool
		expectPen   float64
		expectNorm  Vector2D
		expectPoint Vector2D
	}{
		{
			name:      "far_apart_no_contact",
			a:         Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 1},
			b:         Circle{Center: Vector2D{X: 3, Y: 0}, Radius: 1},
			expectHit: false,
		},
		{
			name:      "exactly_touching_is_not_colliding",
			a:         Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 1},
			b:         Circle{Center: Vector2D{X: 2, Y: 0}, Radius: 1},
			expectHit: false,
		},
		{
			name:        "overlapping_along_x",
			a:           Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 1},
			b:           Circle{Center: Vector2D{X: 1.5, Y: 0}, Radius: 1},
			expectHit:   true,
			expectPen:   0.5,
			expectNorm:  Vector2D{X: 1, Y: 0},
			expectPoint: Vector2D{X: 0.75, Y: 0},
		},
		{
			name:        "coincident_centers_use_fallback_axis",
			a:           Circle{Center: Vector2D{X: 4, Y: 4}, Radius: 1},
			b:           Circle{Center: Vector2D{X: 4, Y: 4}, Radius: 2},
			expectHit:   true,
			expectPen:   3,
			expectNorm:  AxisX,
			expectPoint: Vector2D{X: 3.5, Y: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := CircleCircle(tt.a, tt.b)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%v, got %v", tt.expectHit, ok)
			}
			if !ok {
				return
			}
			if !nearlyEqual(c.Penetration, tt.expectPen, epsilon) {
				t.Errorf("Expected penetration %v, got %v", tt.expectPen, c.Penetration)
			}
			if !vecNear(c.Normal, tt.expectNorm, epsilon) {
				t.Errorf("Expected normal %v, got %v", tt.expectNorm, c.Normal)
			}
			if !vecNear(c.Point, tt.expectPoint, epsilon) {
				t.Errorf("Expected point %v, got %v", tt.expectPoint, c.Point)
			}
		})
	}
}

func TestCheckCollision_MatchesCollides(t *testing.T) {
	a := Circle{Center: Vector2D{X: 10, Y: 10}, Radius: 5}
	b := Circle{Center: Vector2D{X: 18, Y: 10}, Radius: 5}
	_, ok := CheckCollision(a, b)
	if ok != a.Collides(b) {
		t.Errorf("CheckCollision (%v) disagrees with Collides (%v)", ok, a.Collides(b))
	}
}

func TestBoxBox_AxisAlignedOverlap(t *testing.T) {
	a := OrientedBox{Center: Vector2D{X: 0, Y: 0}, Half: Vector2D{X: 1, Y: 1}}
	b := OrientedBox{Center: Vector2D{X: 1, Y: 0}, Half: Vector2D{X: 1, Y: 1}}

	c, ok := BoxBox(a, b, DefaultTieEpsilon)
	if !ok {
		t.Fatal("Expected overlapping boxes to collide")
	}
	if c.Penetration != 1.0 {
		t.Errorf("Expected penetration exactly 1.0, got %v", c.Penetration)
	}
	if c.Normal != (Vector2D{X: 1, Y: 0}) {
		t.Errorf("Expected horizontal normal (1, 0), got %v", c.Normal)
	}
	if !vecNear(c.Point, Vector2D{X: 0.5, Y: 0}, epsilon) {
		t.Errorf("Expected contact midpoint (0.5, 0), got %v", c.Point)
	}
}

func TestBoxBox_Separated(t *testing.T) {
	tests := []struct {
		name string
		b    OrientedBox
	}{
		{"separated_on_x", OrientedBox{Center: Vector2D{X: 3, Y: 0}, Half: Vector2D{X: 1, Y: 1}}},
		{"touching_edges", OrientedBox{Center: Vector2D{X: 2, Y: 0}, Half: Vector2D{X: 1, Y: 1}}},
		// AABBs overlap, but the rotated box's own axis separates them
		{"rotated_corner_gap", OrientedBox{Center: Vector2D{X: 2.3, Y: 2.3}, Half: Vector2D{X: 1, Y: 1}, Angle: math.Pi / 4}},
	}

	a := OrientedBox{Center: Vector2D{}, Half: Vector2D{X: 1, Y: 1}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := BoxBox(a, tt.b, DefaultTieEpsilon); ok {
				t.Errorf("Expected no contact for %+v", tt.b)
			}
		})
	}
}

func TestBoxBox_TiePrefersFirstBoxAxes(t *testing.T) {
	a := OrientedBox{Center: Vector2D{}, Half: Vector2D{X: 1, Y: 1}}

	t.Run("equal_x_and_y_overlap", func(t *testing.T) {
		b := OrientedBox{Center: Vector2D{X: 1, Y: 1}, Half: Vector2D{X: 1, Y: 1}}
		c, ok := BoxBox(a, b, DefaultTieEpsilon)
		if !ok {
			t.Fatal("Expected contact")
		}
		if c.Normal != (Vector2D{X: 1, Y: 0}) {
			t.Errorf("Expected A's x axis to win the tie, got %v", c.Normal)
		}
	})

	t.Run("b_axis_within_epsilon", func(t *testing.T) {
		// B is turned a quarter, so its y axis is -x and ties with A's x axis
		b := OrientedBox{Center: Vector2D{X: 1, Y: 0.5}, Half: Vector2D{X: 1, Y: 1}, Angle: math.Pi / 2}
		c, ok := BoxBox(a, b, DefaultTieEpsilon)
		if !ok {
			t.Fatal("Expected contact")
		}
		if !vecNear(c.Normal, Vector2D{X: 1, Y: 0}, 1e-12) {
			t.Errorf("Expected A's x axis to win the tie, got %v", c.Normal)
		}
	})

	t.Run("stable_across_repeats", func(t *testing.T) {
		b := OrientedBox{Center: Vector2D{X: 1, Y: 1}, Half: Vector2D{X: 1, Y: 1}}
		first, _ := BoxBox(a, b, DefaultTieEpsilon)
		for i := 0; i < 10; i++ {
			c, _ := BoxBox(a, b, DefaultTieEpsilon)
			if c != first {
				t.Fatalf("Expected identical contact on repeat %d, got %v vs %v", i, c, first)
			}
		}
	})
}

func TestCircleBox(t *testing.T) {
	box := OrientedBox{Center: Vector2D{}, Half: Vector2D{X: 2, Y: 2}}

	tests := []struct {
		name       string
		circle     Circle
		expectHit  bool
		expectPen  float64
		expectNorm Vector2D
		expectPt   Vector2D
	}{
		{
			name:      "outside_no_contact",
			circle:    Circle{Center: Vector2D{X: -4, Y: 0}, Radius: 1},
			expectHit: false,
		},
		{
			name:      "outside_exactly_touching",
			circle:    Circle{Center: Vector2D{X: -3, Y: 0}, Radius: 1},
			expectHit: false,
		},
		{
			name:       "outside_left_face",
			circle:     Circle{Center: Vector2D{X: -2.5, Y: 0}, Radius: 1},
			expectHit:  true,
			expectPen:  0.5,
			expectNorm: Vector2D{X: 1, Y: 0},
			expectPt:   Vector2D{X: -2, Y: 0},
		},
		{
			name:       "inside_near_right_face",
			circle:     Circle{Center: Vector2D{X: 1.5, Y: 0}, Radius: 0.5},
			expectHit:  true,
			expectPen:  1,
			expectNorm: Vector2D{X: -1, Y: 0},
			expectPt:   Vector2D{X: 2, Y: 0},
		},
		{
			name:       "inside_near_bottom_face",
			circle:     Circle{Center: Vector2D{X: 0.2, Y: -1.75}, Radius: 0.5},
			expectHit:  true,
			expectPen:  0.75,
			expectNorm: Vector2D{X: 0, Y: 1},
			expectPt:   Vector2D{X: 0.2, Y: -2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := CircleBox(tt.circle, box, DefaultTieEpsilon)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%v, got %v", tt.expectHit, ok)
			}
			if !ok {
				return
			}
			if !nearlyEqual(c.Penetration, tt.expectPen, epsilon) {
				t.Errorf("Expected penetration %v, got %v", tt.expectPen, c.Penetration)
			}
			if !vecNear(c.Normal, tt.expectNorm, epsilon) {
				t.Errorf("Expected normal %v, got %v", tt.expectNorm, c.Normal)
			}
			if !vecNear(c.Point, tt.expectPt, epsilon) {
				t.Errorf("Expected point %v, got %v", tt.expectPt, c.Point)
			}
		})
	}
}

func TestCircleBox_InsideTieUsesLargerOffset(t *testing.T) {
	box := OrientedBox{Center: Vector2D{}, Half: Vector2D{X: 2, Y: 1}}
	// dx = 2 - 1.5 = 0.5, dy = 1 - 0.5 = 0.5; |x| is larger so x wins
	c, ok := CircleBox(Circle{Center: Vector2D{X: 1.5, Y: 0.5}, Radius: 0.25}, box, DefaultTieEpsilon)
	if !ok {
		t.Fatal("Expected contact")
	}
	if !vecNear(c.Normal, Vector2D{X: -1, Y: 0}, epsilon) {
		t.Errorf("Expected x face normal (-1, 0), got %v", c.Normal)
	}
	if !nearlyEqual(c.Penetration, 0.75, epsilon) {
		t.Errorf("Expected penetration 0.75, got %v", c.Penetration)
	}
}

func TestCircleBox_InsideTieIsAbsolute(t *testing.T) {
	box := OrientedBox{Center: Vector2D{}, Half: Vector2D{X: 100, Y: 110}}

	tests := []struct {
		name       string
		center     Vector2D
		expectNorm Vector2D
		expectPen  float64
	}{
		// dx = 50, dy = 50.005: far apart in absolute terms, the x face is nearer
		{"margins_differ", Vector2D{X: 50, Y: 59.995}, Vector2D{X: -1, Y: 0}, 51},
		// dx = 50, dy = 50.00005: a tie, the larger |y| offset wins
		{"margins_tie", Vector2D{X: 50, Y: 59.99995}, Vector2D{X: 0, Y: -1}, 51.00005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := CircleBox(Circle{Center: tt.center, Radius: 1}, box, DefaultTieEpsilon)
			if !ok {
				t.Fatal("Expected contact")
			}
			if !vecNear(c.Normal, tt.expectNorm, epsilon) {
				t.Errorf("Expected normal %v, got %v", tt.expectNorm, c.Normal)
			}
			if !nearlyEqual(c.Penetration, tt.expectPen, 1e-6) {
				t.Errorf("Expected penetration %v, got %v", tt.expectPen, c.Penetration)
			}
		})
	}
}

func TestCollide_Symmetry(t *testing.T) {
	pose := func(x, y, rot float64) Pose {
		p := IdentityPose()
		p.Position = Vector2D{X: x, Y: y}
		p.Rotation = rot
		return p
	}

	tests := []struct {
		name         string
		poseA, poseB Pose
		a, b         Shape
	}{
		{"circle_circle", pose(0, 0, 0), pose(1.2, 0.4, 0), NewCircle(1), NewCircle(0.8)},
		{"box_box_rotated", pose(0, 0, 0.3), pose(1.5, 0.5, -0.2), NewBox(1, 0.5), NewBox(0.75, 0.75)},
		{"circle_box", pose(0, 2.2, 0), pose(0, 0, 0.1), NewCircle(0.5), NewBox(2, 2)},
		{"box_circle", pose(0.5, 0, 0.7), pose(1.4, 0.3, 0), NewBox(1, 1), NewCircle(0.6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab, okAB := Collide(tt.poseA, tt.a, tt.poseB, tt.b, DefaultTieEpsilon)
			ba, okBA := Collide(tt.poseB, tt.b, tt.poseA, tt.a, DefaultTieEpsilon)
			if !okAB || !okBA {
				t.Fatalf("Expected both orders to collide, got %v and %v", okAB, okBA)
			}
			if !nearlyEqual(ab.Penetration, ba.Penetration, 1e-9) {
				t.Errorf("Penetration mismatch: %v vs %v", ab.Penetration, ba.Penetration)
			}
			if !vecNear(ab.Normal, ba.Normal.Neg(), 1e-9) {
				t.Errorf("Expected opposite normals, got %v and %v", ab.Normal, ba.Normal)
			}
			if !nearlyEqual(ab.Normal.Length(), 1, 1e-9) {
				t.Errorf("Expected unit normal, got length %v", ab.Normal.Length())
			}
		})
	}
}

func TestCollide_NormalPointsFromAToB(t *testing.T) {
	box := IdentityPose()
	circle := IdentityPose()
	circle.Position = Vector2D{X: 2.5, Y: 0}

	c, ok := Collide(box, NewBox(2, 2), circle, NewCircle(1), DefaultTieEpsilon)
	if !ok {
		t.Fatal("Expected contact")
	}
	if !vecNear(c.Normal, Vector2D{X: 1, Y: 0}, epsilon) {
		t.Errorf("Expected normal (1, 0), got %v", c.Normal)
	}
	if !nearlyEqual(c.Penetration, 0.5, epsilon) {
		t.Errorf("Expected penetration 0.5, got %v", c.Penetration)
	}
}

func TestCollide_DegenerateShapes(t *testing.T) {
	p := IdentityPose()
	tests := []struct {
		name string
		a, b Shape
	}{
		{"zero_width_box", NewBox(0, 1), NewBox(1, 1)},
		{"zero_radius_circle", NewCircle(0), NewCircle(1)},
		{"negative_clamped_radius", NewCircle(-3), NewBox(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Collide(p, tt.a, p, tt.b, DefaultTieEpsilon); ok {
				t.Error("Expected degenerate shape to produce no contact")
			}
		})
	}
}

func TestContact_Flip(t *testing.T) {
	c := Contact{Point: Vector2D{X: 1, Y: 2}, Normal: Vector2D{X: 0, Y: 1}, Penetration: 0.3}
	f := c.Flip()
	if f.Normal != (Vector2D{X: 0, Y: -1}) || f.Point != c.Point || f.Penetration != c.Penetration {
		t.Errorf("Unexpected flipped contact %+v", f)
	}
}
