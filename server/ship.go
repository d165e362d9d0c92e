package main

import "math"

const (
	ShipRadius      = 20.0
	ShipDefaultHull = 100.0
	ShipMaxSpeed    = 350.0 // units/s
)

// Ship is a targetable vessel drifting through the sector. It is the usual
// victim of asteroid impacts.
type Ship struct {
	SpaceObject
	Name       string
	VX, VY     float64
	Hull       float64
	MaxHull    float64
	LastDamage DamageInfo
}

// NewShip creates a ship with full hull and joins it to the sector
func NewShip(svc Services, name string, hull float64) *Ship {
	if hull <= 0 {
		hull = ShipDefaultHull
	}
	s := &Ship{Name: name, Hull: hull, MaxHull: hull}
	s.initObject("Ship", ShipRadius)
	s.repl.Register("hull", &s.Hull)
	s.repl.RegisterStatic("max_hull",
		func() float64 { return s.MaxHull },
		func(v float64) { s.MaxHull = v })
	if svc.World != nil {
		svc.World.Add(s)
	}
	return s
}

// SetVelocity sets the drift velocity, clamped to ShipMaxSpeed
func (s *Ship) SetVelocity(vx, vy float64) {
	speed := math.Sqrt(vx*vx + vy*vy)
	if speed > ShipMaxSpeed {
		vx = vx / speed * ShipMaxSpeed
		vy = vy / speed * ShipMaxSpeed
	}
	s.VX, s.VY = vx, vy
	if speed > 0 {
		s.Rotation = math.Atan2(vy, vx) * 180 / math.Pi
	}
}

// Update moves the ship one tick (dt in seconds)
func (s *Ship) Update(dt float64) {
	if s.destroyed {
		return
	}
	s.X += s.VX * dt
	s.Y += s.VY * dt
}

func (s *Ship) Collidable() bool { return !s.destroyed }

// CanBeTargetedBy is true while the ship is still flying
func (s *Ship) CanBeTargetedBy(attacker Object) bool {
	return !s.destroyed && s.Hull > 0
}

// TakeDamage reduces hull and destroys the ship when it reaches zero
func (s *Ship) TakeDamage(amount float64, info DamageInfo) {
	if s.destroyed || amount <= 0 {
		return
	}
	s.LastDamage = info
	s.Hull -= amount
	if s.Hull <= 0 {
		s.Hull = 0
		s.Destroy()
	}
}
