package main

import (
	"errors"
	"math"
	"math/rand"
)

const (
	AsteroidMinRadius = 110.0
	AsteroidMaxRadius = 130.0
	AsteroidMinSpin   = 0.1 // degrees per second, cosmetic
	AsteroidMaxSpin   = 0.8
	AsteroidMinHull   = 1
	AsteroidMaxHull   = 15
	AsteroidVariants  = 10

	AsteroidCollisionDamage = 35.0
	AsteroidAvoidRadius     = 300.0
	AsteroidMaxSize         = 10000.0 // largest size SetSize accepts

	visualDepthGrowMin = 1.2
	visualDepthGrowMax = 2.0
)

var (
	ErrInvalidSize = errors.New("asteroid size out of range")
	ErrDestroyed   = errors.New("object already destroyed")
)

// DepthStrategy decides the out-of-plane offset of an asteroid.
type DepthStrategy struct {
	Min, Max   float64
	FlipChance float64 // chance of negating the initial depth
	KeepClear  bool    // keep |depth| >= 2*size after resizing
}

var (
	// HittableDepth keeps asteroids close to the play plane
	HittableDepth = DepthStrategy{Min: -50, Max: 50}
	// VisualDepth pushes background asteroids far above or below the plane
	VisualDepth = DepthStrategy{Min: 300, Max: 800, FlipChance: 0.5, KeepClear: true}
)

func (d DepthStrategy) initial(r *rand.Rand) float64 {
	z := randRange(r, d.Min, d.Max)
	if d.FlipChance > 0 && r.Float64() < d.FlipChance {
		z = -z
	}
	return z
}

// fit grows depth until it clears an object of the given size.
func (d DepthStrategy) fit(z, size float64, r *rand.Rand) float64 {
	if !d.KeepClear {
		return z
	}
	if z == 0 {
		return size * 2
	}
	for math.Abs(z) < size*2 {
		z *= randRange(r, visualDepthGrowMin, visualDepthGrowMax)
	}
	return z
}

// Asteroid is a destructible rock. The hittable variant damages whatever it
// touches and blocks navigation; the visual variant is background scenery.
type Asteroid struct {
	SpaceObject
	svc       Services
	hittable  bool
	depthRule DepthStrategy

	depth         float64
	size          float64
	rotationSpeed float64
	hull          int
	variant       int
}

// NewAsteroid spawns a hittable asteroid with randomized defaults
func NewAsteroid(svc Services) *Asteroid {
	return newAsteroid(svc, "Asteroid", true, HittableDepth)
}

// NewVisualAsteroid spawns a background-only asteroid
func NewVisualAsteroid(svc Services) *Asteroid {
	return newAsteroid(svc, "VisualAsteroid", false, VisualDepth)
}

func newAsteroid(svc Services, class string, hittable bool, rule DepthStrategy) *Asteroid {
	r := svc.rng()
	svc.Rand = r
	a := &Asteroid{svc: svc, hittable: hittable, depthRule: rule}
	a.initObject(class, randRange(r, AsteroidMinRadius, AsteroidMaxRadius))
	a.Rotation = randRange(r, 0, 360)
	a.rotationSpeed = randRange(r, AsteroidMinSpin, AsteroidMaxSpin)
	a.depth = rule.initial(r)
	a.size = a.radius
	a.hull = irandRange(r, AsteroidMinHull, AsteroidMaxHull)
	a.variant = irandRange(r, 1, AsteroidVariants)
	if hittable {
		a.Radar = RadarSignature{Gravity: 0.05}
	}

	a.repl.Register("z", &a.depth)
	a.repl.Register("size", &a.size)
	a.repl.RegisterStatic("variant",
		func() float64 { return float64(a.variant) },
		func(v float64) { a.variant = int(v) })
	a.repl.RegisterStatic("hull",
		func() float64 { return float64(a.hull) },
		func(v float64) { a.hull = int(v) })
	a.repl.RegisterStatic("rotation_speed",
		func() float64 { return a.rotationSpeed },
		func(v float64) { a.rotationSpeed = v })

	if svc.World != nil {
		svc.World.Add(a)
	}
	if hittable && svc.Avoidance != nil {
		svc.Avoidance.AddAvoidObject(a, AsteroidAvoidRadius)
	}
	return a
}

// SetSize changes the logical radius. Values outside (0, AsteroidMaxSize]
// are rejected with ErrInvalidSize and leave the asteroid untouched.
func (a *Asteroid) SetSize(size float64) error {
	if a.destroyed {
		return ErrDestroyed
	}
	if !(size > 0) || size > AsteroidMaxSize {
		return ErrInvalidSize
	}
	a.size = size
	a.setRadius(size)
	a.depth = a.depthRule.fit(a.depth, size, a.svc.rng())
	return nil
}

// Size returns the logical radius
func (a *Asteroid) Size() float64 { return a.size }

// Radius returns the geometric radius, resynchronizing it from size first.
// Replicated size updates land before physics sees them, so the sync is lazy.
func (a *Asteroid) Radius() float64 {
	if a.size != a.radius {
		a.setRadius(a.size)
	}
	return a.radius
}

func (a *Asteroid) Depth() float64         { return a.depth }
func (a *Asteroid) Hittable() bool         { return a.hittable }
func (a *Asteroid) Hull() int              { return a.hull }
func (a *Asteroid) Variant() int           { return a.variant }
func (a *Asteroid) RotationSpeed() float64 { return a.rotationSpeed }

// Collidable keeps visual asteroids out of the contact graph
func (a *Asteroid) Collidable() bool {
	return a.hittable && !a.destroyed
}

// Collide resolves a physical contact. Only the server acts on it: the
// struck target takes fixed kinetic damage, an explosion is left behind
// and the asteroid is destroyed. force does not scale the damage.
func (a *Asteroid) Collide(target Object, force float64) {
	if a.destroyed || !a.hittable || !a.svc.isServer() {
		return
	}
	if target == nil || target.Destroyed() || !target.CanBeTargetedBy(nil) {
		return
	}

	target.TakeDamage(AsteroidCollisionDamage, DamageInfo{
		Type: DamageKinetic,
		X:    a.X,
		Y:    a.Y,
	})

	e := NewExplosionEffect(a.svc)
	e.SetSize(a.Radius())
	e.SetPosition(a.X, a.Y)
	e.Radar = RadarSignature{Gravity: 0, Electrical: 0.1, Biological: 0.2}

	a.Destroy()
}
