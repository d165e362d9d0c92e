package main

// ExplosionLifetime is how long an explosion stays in the sector (seconds)
const ExplosionLifetime = 2.0

// ExplosionEffect is a short-lived marker left behind by a destroyed object.
// It is visible on radar but takes no part in collisions.
type ExplosionEffect struct {
	SpaceObject
	size float64
	life float64
}

// NewExplosionEffect creates an explosion and joins it to the sector
func NewExplosionEffect(svc Services) *ExplosionEffect {
	e := &ExplosionEffect{size: 1, life: ExplosionLifetime}
	e.initObject("ExplosionEffect", 1)
	e.repl.Register("size", &e.size)
	e.repl.RegisterStatic("lifetime",
		func() float64 { return e.life },
		func(v float64) { e.life = v })
	if svc.World != nil {
		svc.World.Add(e)
	}
	return e
}

func (e *ExplosionEffect) SetSize(size float64) {
	e.size = size
	e.setRadius(size)
}

func (e *ExplosionEffect) Size() float64 { return e.size }

// Radius follows size the same way asteroids do
func (e *ExplosionEffect) Radius() float64 {
	if e.size != e.radius {
		e.setRadius(e.size)
	}
	return e.radius
}

// Update ticks down the lifetime and removes the effect when it runs out
func (e *ExplosionEffect) Update(dt float64) {
	if e.destroyed {
		return
	}
	e.life -= dt
	if e.life <= 0 {
		e.Destroy()
	}
}
