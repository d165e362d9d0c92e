package main

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// fakeRegistry assigns ids and remembers everything that joined
type fakeRegistry struct {
	next  EntityID
	added []Object
}

func (r *fakeRegistry) Add(obj Object) {
	r.next++
	obj.Base().id = r.next
	r.added = append(r.added, obj)
}

func (r *fakeRegistry) effects() []*ExplosionEffect {
	var out []*ExplosionEffect
	for _, obj := range r.added {
		if e, ok := obj.(*ExplosionEffect); ok {
			out = append(out, e)
		}
	}
	return out
}

func newTestServices(server bool, seed int64) (Services, *fakeRegistry, *AvoidanceIndex) {
	reg := &fakeRegistry{}
	ix := NewAvoidanceIndex()
	return Services{
		Authority: SimContext{Server: server},
		Rand:      rand.New(rand.NewSource(seed)),
		World:     reg,
		Avoidance: ix,
		Catalog:   DefaultCatalog{},
	}, reg, ix
}

func TestAsteroidSetSizeRoundTrip(t *testing.T) {
	svc, _, _ := newTestServices(true, 1)
	sizes := []float64{0.001, 1, 50, 110, 130, 999.5, AsteroidMaxSize}
	for _, s := range sizes {
		a := NewAsteroid(svc)
		if err := a.SetSize(s); err != nil {
			t.Fatalf("SetSize(%v): %v", s, err)
		}
		if a.Size() != s {
			t.Errorf("Size() = %v, want %v", a.Size(), s)
		}
		// radius is synced eagerly by SetSize, before any accessor runs
		if a.radius != s {
			t.Errorf("radius field = %v after SetSize(%v)", a.radius, s)
		}
		if a.Radius() != s {
			t.Errorf("Radius() = %v, want %v", a.Radius(), s)
		}
	}
}

func TestAsteroidSetSizeRejectsInvalid(t *testing.T) {
	svc, _, _ := newTestServices(true, 2)
	for _, variant := range []func(Services) *Asteroid{NewAsteroid, NewVisualAsteroid} {
		a := variant(svc)
		size, radius, depth := a.Size(), a.Radius(), a.Depth()
		for _, bad := range []float64{0, -1, -0.0001, math.NaN(), math.Inf(1), math.Inf(-1), AsteroidMaxSize * 1.0001, 1e5, math.MaxFloat64} {
			err := a.SetSize(bad)
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("%s SetSize(%v) err = %v, want ErrInvalidSize", a.Class(), bad, err)
			}
			if a.Size() != size || a.Radius() != radius || a.Depth() != depth {
				t.Errorf("%s SetSize(%v) changed state", a.Class(), bad)
			}
		}
	}
}

func TestAsteroidSetSizeAfterDestroy(t *testing.T) {
	svc, _, _ := newTestServices(true, 3)
	a := NewAsteroid(svc)
	size := a.Size()
	a.Destroy()
	if err := a.SetSize(10); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SetSize on destroyed asteroid err = %v, want ErrDestroyed", err)
	}
	if a.Size() != size {
		t.Error("destroyed asteroid should not change size")
	}
}

func TestVisualAsteroidDepthClearsSize(t *testing.T) {
	sizes := []float64{1, 100, 150, 200, 399, 400, 1000, 5000}
	for seed := int64(0); seed < 200; seed++ {
		svc, _, _ := newTestServices(true, seed)
		for _, s := range sizes {
			a := NewVisualAsteroid(svc)
			before := a.Depth()
			if err := a.SetSize(s); err != nil {
				t.Fatalf("SetSize(%v): %v", s, err)
			}
			if math.Abs(a.Depth()) < s*2 {
				t.Fatalf("seed %d size %v: |depth| = %v, want >= %v", seed, s, math.Abs(a.Depth()), s*2)
			}
			if math.Signbit(a.Depth()) != math.Signbit(before) {
				t.Fatalf("seed %d size %v: depth sign flipped from %v to %v", seed, s, before, a.Depth())
			}
		}
	}
}

func TestVisualAsteroidDepthFiniteAtLargestSize(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		svc, _, _ := newTestServices(true, seed)
		a := NewVisualAsteroid(svc)
		if err := a.SetSize(math.MaxFloat64); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("SetSize(MaxFloat64) err = %v", err)
		}
		if err := a.SetSize(AsteroidMaxSize); err != nil {
			t.Fatal(err)
		}
		z := a.Depth()
		if math.IsInf(z, 0) || math.IsNaN(z) {
			t.Fatalf("seed %d: depth %v not finite", seed, z)
		}
		if math.Abs(z) < 2*AsteroidMaxSize {
			t.Fatalf("seed %d: |depth| = %v, want >= %v", seed, math.Abs(z), 2*AsteroidMaxSize)
		}
	}
}

func TestVisualAsteroidDepthKeptWhenAlreadyClear(t *testing.T) {
	svc, _, _ := newTestServices(true, 4)
	a := NewVisualAsteroid(svc)
	before := a.Depth()
	// |depth| >= 300 always clears a size of 100
	if err := a.SetSize(100); err != nil {
		t.Fatal(err)
	}
	if a.Depth() != before {
		t.Errorf("depth changed from %v to %v although already clear", before, a.Depth())
	}
}

func TestHittableAsteroidDepthIgnoresSize(t *testing.T) {
	svc, _, _ := newTestServices(true, 5)
	a := NewAsteroid(svc)
	before := a.Depth()
	if err := a.SetSize(5000); err != nil {
		t.Fatal(err)
	}
	if a.Depth() != before {
		t.Errorf("hittable depth changed from %v to %v", before, a.Depth())
	}
}

func TestAsteroidSpawnRanges(t *testing.T) {
	const samples = 10000
	svc, _, _ := newTestServices(true, 42)
	sawNegative, sawPositive := false, false
	for i := 0; i < samples; i++ {
		for _, a := range []*Asteroid{NewAsteroid(svc), NewVisualAsteroid(svc)} {
			if r := a.Radius(); r < AsteroidMinRadius || r > AsteroidMaxRadius {
				t.Fatalf("%s radius %v out of range", a.Class(), r)
			}
			if a.Size() != a.Radius() {
				t.Fatalf("%s size %v != radius %v at spawn", a.Class(), a.Size(), a.Radius())
			}
			if a.Rotation < 0 || a.Rotation >= 360 {
				t.Fatalf("%s rotation %v out of range", a.Class(), a.Rotation)
			}
			if s := a.RotationSpeed(); s < AsteroidMinSpin || s > AsteroidMaxSpin {
				t.Fatalf("%s rotation speed %v out of range", a.Class(), s)
			}
			if h := a.Hull(); h < AsteroidMinHull || h > AsteroidMaxHull {
				t.Fatalf("%s hull %d out of range", a.Class(), h)
			}
			if v := a.Variant(); v < 1 || v > AsteroidVariants {
				t.Fatalf("%s variant %d out of range", a.Class(), v)
			}
			z := a.Depth()
			if a.Hittable() {
				if z < -50 || z > 50 {
					t.Fatalf("hittable depth %v out of range", z)
				}
				continue
			}
			if math.Abs(z) < 300 || math.Abs(z) > 800 {
				t.Fatalf("visual depth %v out of range", z)
			}
			if z < 0 {
				sawNegative = true
			} else {
				sawPositive = true
			}
		}
	}
	if !sawNegative || !sawPositive {
		t.Error("visual asteroids should be spawned on both sides of the plane")
	}
}

func TestAsteroidVariantsDiffer(t *testing.T) {
	svc, _, _ := newTestServices(true, 6)
	hit := NewAsteroid(svc)
	vis := NewVisualAsteroid(svc)
	if !hit.Hittable() || vis.Hittable() {
		t.Fatal("hittable flag mismatch")
	}
	if !hit.Collidable() || vis.Collidable() {
		t.Error("only the hittable variant takes part in collisions")
	}
	if hit.Radar.Gravity != 0.05 {
		t.Errorf("hittable radar gravity = %v, want 0.05", hit.Radar.Gravity)
	}
	if vis.Radar != (RadarSignature{}) {
		t.Errorf("visual asteroid should have no radar signature, got %+v", vis.Radar)
	}
}

func TestAsteroidLazyRadiusResync(t *testing.T) {
	svc, _, _ := newTestServices(false, 7)
	a := NewAsteroid(svc)
	old := a.radius

	// a replicated size lands without touching the geometric radius
	if !a.Replicator().Set("size", 42) {
		t.Fatal("size should be a replicated member")
	}
	if a.radius != old {
		t.Fatal("replication should not resync radius eagerly")
	}
	if got := a.Radius(); got != 42 {
		t.Errorf("Radius() = %v, want 42", got)
	}
	if a.radius != 42 {
		t.Errorf("radius field = %v after read, want 42", a.radius)
	}
}

func TestAsteroidPresentation(t *testing.T) {
	svc, _, _ := newTestServices(true, 8)
	a := NewAsteroid(svc)
	a.SetPosition(100, -200)
	a.Replicator().Set("size", 77)

	info := a.Presentation()
	if info.Radius != 77 {
		t.Errorf("presentation radius = %v, want resynced 77", info.Radius)
	}
	if info.X != 100 || info.Y != -200 || info.Depth != a.Depth() || info.Variant != a.Variant() {
		t.Errorf("presentation = %+v does not match asteroid", info)
	}
	want := DefaultCatalog{}.AsteroidModel(a.Variant())
	if info.Model != want {
		t.Errorf("model = %+v, want %+v", info.Model, want)
	}
	if got := (DefaultCatalog{}).AsteroidModel(3); got.Mesh != "Astroid_3.model" || got.Diffuse != "Astroid_3_d.png" || got.Specular != "Astroid_3_s.png" {
		t.Errorf("catalog model = %+v", got)
	}
}

func TestAsteroidRadarBlip(t *testing.T) {
	svc, _, _ := newTestServices(true, 9)
	a := NewAsteroid(svc)
	if err := a.SetSize(100); err != nil {
		t.Fatal(err)
	}

	blip, ok := a.RadarBlip(1, 64)
	if !ok {
		t.Fatal("hittable asteroid should show on radar")
	}
	if want := 100.0 * 1 / 64 * 2; math.Abs(blip.Scale-want) > 1e-9 {
		t.Errorf("blip scale = %v, want %v", blip.Scale, want)
	}
	if blip.Tint != AsteroidRadarTint {
		t.Errorf("blip tint = %+v", blip.Tint)
	}

	small, _ := a.RadarBlip(0.001, 64)
	if small.Scale != minRadarBlipScale {
		t.Errorf("tiny blip scale = %v, want floor %v", small.Scale, minRadarBlipScale)
	}

	if _, ok := NewVisualAsteroid(svc).RadarBlip(1, 64); ok {
		t.Error("visual asteroid should not show on radar")
	}
}

func TestAsteroidSpinAngle(t *testing.T) {
	svc, _, _ := newTestServices(true, 10)
	a := NewAsteroid(svc)
	if got := a.SpinAngle(10); math.Abs(got-10*a.RotationSpeed()) > 1e-9 {
		t.Errorf("SpinAngle(10) = %v", got)
	}
	// spin is cosmetic and never moves the collision shape
	r := a.Radius()
	x, y := a.Position()
	a.SpinAngle(1000)
	a.Update(1)
	if nx, ny := a.Position(); nx != x || ny != y || a.Radius() != r {
		t.Error("spin should not change geometry")
	}
}
