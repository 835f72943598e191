package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		result   Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"Multiply by int", a.Multiply(float64(3)), NewVec3(3, 6, 9)},
		{"Divide", a.Divide(2), NewVec3(0.5, 1, 1.5)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const tolerance = 1e-12
			if tt.result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, tt.result)
			}
		})
	}

	if a.Dot(b) != 12 {
		t.Errorf("Expected dot product 12, got %f", a.Dot(b))
	}
	if a.LengthSquared() != 14 {
		t.Errorf("Expected squared length 14, got %f", a.LengthSquared())
	}
}

func TestVec3_NormalizeHasUnitLength(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		v := NewVec3(random.Float64()*200-100, random.Float64()*200-100, random.Float64()*200-100)
		if v.LengthSquared() == 0 {
			continue
		}
		length := v.Normalize().Length()
		if math.Abs(length-1) > 1e-12 {
			t.Fatalf("Normalize(%v) has length %f", v, length)
		}
	}
}

func TestVec3_NormalizeZeroVector(t *testing.T) {
	n := Vec3{}.Normalize()
	if !math.IsNaN(n.X) || !math.IsNaN(n.Y) || !math.IsNaN(n.Z) {
		t.Errorf("Expected NaN components for zero vector, got %v", n)
	}
}

func TestVec3_CrossIsPerpendicular(t *testing.T) {
	random := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		u := NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		v := NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		c := u.Cross(v)

		if math.Abs(c.Dot(u)) > 1e-12 || math.Abs(c.Dot(v)) > 1e-12 {
			t.Fatalf("cross(%v, %v) = %v is not perpendicular to its inputs", u, v, c)
		}
	}
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"tiny", NewVec3(1e-9, -1e-9, 5e-9), true},
		{"one component large", NewVec3(1e-9, 1e-7, 0), false},
		{"unit", NewVec3(1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.NearZero(); got != tt.expected {
				t.Errorf("NearZero(%v) = %t, expected %t", tt.v, got, tt.expected)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	n := NewVec3(0, 1, 0)

	for i := 0; i < 100; i++ {
		v := NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		r := Reflect(v, n)

		if math.Abs(r.Dot(n)+v.Dot(n)) > 1e-12 {
			t.Fatalf("dot(reflect(v,n), n) = %f, expected %f", r.Dot(n), -v.Dot(n))
		}
		if math.Abs(r.Length()-v.Length()) > 1e-12 {
			t.Fatalf("Reflection changed length: %f vs %f", r.Length(), v.Length())
		}
	}

	// 45 degree mirror bounce
	got := Reflect(NewVec3(1, -1, 0), n)
	if got.Subtract(NewVec3(1, 1, 0)).Length() > 1e-12 {
		t.Errorf("Expected (1,1,0), got %v", got)
	}
}

func TestRefract(t *testing.T) {
	n := NewVec3(0, 1, 0)

	t.Run("ratio one passes straight through", func(t *testing.T) {
		uv := NewVec3(1, -1, 0).Normalize()
		got := Refract(uv, n, 1.0)
		if got.Subtract(uv).Length() > 1e-12 {
			t.Errorf("Expected %v, got %v", uv, got)
		}
	})

	t.Run("normal incidence is undeflected", func(t *testing.T) {
		uv := NewVec3(0, -1, 0)
		got := Refract(uv, n, 1.0/1.5)
		if got.Subtract(uv).Length() > 1e-12 {
			t.Errorf("Expected %v, got %v", uv, got)
		}
	})

	t.Run("snell's law", func(t *testing.T) {
		uv := NewVec3(1, -1, 0).Normalize()
		ratio := 1.0 / 1.5
		got := Refract(uv, n, ratio)

		sinIn := math.Sqrt(1 - math.Pow(uv.Negate().Dot(n), 2))
		sinOut := math.Sqrt(1 - math.Pow(got.Negate().Dot(n), 2))
		if math.Abs(sinOut-ratio*sinIn) > 1e-12 {
			t.Errorf("sin(out)=%f, expected %f", sinOut, ratio*sinIn)
		}
		if math.Abs(got.Length()-1) > 1e-12 {
			t.Errorf("Refracted unit direction has length %f", got.Length())
		}
	})
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -2))
	got := ray.At(1.5)
	expected := NewVec3(1, 2, 0)
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
