package core

import (
	"math"
	"math/rand"
	"testing"
)

// sequenceSampler replays a fixed list of values and counts draws
type sequenceSampler struct {
	values []float64
	draws  int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.draws%len(s.values)]
	s.draws++
	return v
}

func (s *sequenceSampler) Get2D() Vec2 {
	return NewVec2(s.Get1D(), s.Get1D())
}

func (s *sequenceSampler) Get3D() Vec3 {
	return NewVec3(s.Get1D(), s.Get1D(), s.Get1D())
}

func TestRandomInUnitSphere_RejectsOutsidePoints(t *testing.T) {
	// First triple maps to (1,1,1)-ish corner and is rejected, second to the origin
	sampler := &sequenceSampler{values: []float64{0.99, 0.99, 0.99, 0.5, 0.5, 0.5}}

	p := RandomInUnitSphere(sampler)
	if p.LengthSquared() >= 1 {
		t.Fatalf("Point %v is outside the unit sphere", p)
	}
	if sampler.draws != 6 {
		t.Errorf("Expected 6 draws (one rejection), got %d", sampler.draws)
	}
	if p != NewVec3(0, 0, 0) {
		t.Errorf("Expected origin, got %v", p)
	}
}

func TestRandomInUnitSphere_TerminatesUnderSeed(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	sampler := &countingSampler{RandomSampler: NewRandomSampler(random)}

	for i := 0; i < 10000; i++ {
		before := sampler.draws
		p := RandomInUnitSphere(sampler)
		if p.LengthSquared() >= 1 {
			t.Fatalf("Point %v is outside the unit sphere", p)
		}
		// acceptance probability is pi/6, 40 rejections in a row is ~1e-13
		if sampler.draws-before > 3*40 {
			t.Fatalf("Rejection sampling took %d draws", sampler.draws-before)
		}
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	for i := 0; i < 10000; i++ {
		p := RandomInUnitDisk(sampler)
		if p.Z != 0 {
			t.Fatalf("Disk sample has non-zero z: %v", p)
		}
		if p.LengthSquared() >= 1 {
			t.Fatalf("Point %v is outside the unit disk", p)
		}
	}

	scripted := &sequenceSampler{values: []float64{0.0, 0.0, 0.75, 0.25}}
	p := RandomInUnitDisk(scripted)
	if scripted.draws != 4 {
		t.Errorf("Expected one rejected corner sample, got %d draws", scripted.draws)
	}
	if p.Subtract(NewVec3(0.5, -0.5, 0)).Length() > 1e-12 {
		t.Errorf("Expected (0.5,-0.5,0), got %v", p)
	}
}

func TestRandomUnitVector(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	for i := 0; i < 1000; i++ {
		v := RandomUnitVector(sampler)
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit length, got %f", v.Length())
		}
	}
}

func TestRandomOnHemisphere(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	normal := NewVec3(0, 0, 1)

	for i := 0; i < 1000; i++ {
		v := RandomOnHemisphere(sampler, normal)
		if v.Dot(normal) < 0 {
			t.Fatalf("Sample %v is in the opposite hemisphere", v)
		}
	}
}

func TestRandomVec3InRange(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	for i := 0; i < 1000; i++ {
		v := RandomVec3InRange(sampler, 0.5, 1.0)
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if c < 0.5 || c >= 1.0 {
				t.Fatalf("Component %f outside [0.5, 1.0)", c)
			}
		}
	}
}

func TestNewSeededSampler_Reproducible(t *testing.T) {
	a := NewSeededSampler(99)
	b := NewSeededSampler(99)

	for i := 0; i < 10; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatal("Samplers with the same seed diverged")
		}
	}
}

type countingSampler struct {
	*RandomSampler
	draws int
}

func (c *countingSampler) Get1D() float64 {
	c.draws++
	return c.RandomSampler.Get1D()
}

func (c *countingSampler) Get2D() Vec2 {
	return NewVec2(c.Get1D(), c.Get1D())
}

func (c *countingSampler) Get3D() Vec3 {
	return NewVec3(c.Get1D(), c.Get1D(), c.Get1D())
}
