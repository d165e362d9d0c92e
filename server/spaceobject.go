package main

import "math/rand"

// EntityID addresses an object for replication and obstacle indexing.
// IDs are allocated by the owning sector and never reused; 0 means none.
type EntityID uint64

// RadarSignature describes how an object shows up on long range scanners
type RadarSignature struct {
	Gravity    float64
	Electrical float64
	Biological float64
}

// Object is anything simulated inside a sector
type Object interface {
	ID() EntityID
	Class() string
	Position() (float64, float64)
	Radius() float64
	Destroyed() bool
	Destroy()
	CanBeTargetedBy(attacker Object) bool
	TakeDamage(amount float64, info DamageInfo)
	Collidable() bool
	Update(dt float64)
	Base() *SpaceObject
}

// Collider is implemented by objects that react to physical contact.
type Collider interface {
	Collide(target Object, force float64)
}

// Authority reports whether this simulation instance owns gameplay decisions.
type Authority interface {
	IsServer() bool
}

// SimContext is the simulation-mode capability handed to every object.
type SimContext struct {
	Server bool
}

// IsServer reports whether this instance is the authoritative server
func (c SimContext) IsServer() bool { return c.Server }

// EntityRegistry is the entity-management system objects join on construction.
// Implementations assign the identity and own destruction cleanup.
type EntityRegistry interface {
	Add(obj Object)
}

// AvoidanceRegistrar is the write side of the navigation obstacle index.
type AvoidanceRegistrar interface {
	AddAvoidObject(obj Object, radius float64)
}

// Services are the collaborators injected into objects at construction.
// Nil World, Avoidance or Catalog disables the matching behaviour.
type Services struct {
	Authority Authority
	Rand      *rand.Rand
	World     EntityRegistry
	Avoidance AvoidanceRegistrar
	Catalog   ResourceCatalog
}

func (s Services) isServer() bool {
	return s.Authority != nil && s.Authority.IsServer()
}

func (s Services) rng() *rand.Rand {
	if s.Rand == nil {
		return rand.New(rand.NewSource(rand.Int63()))
	}
	return s.Rand
}

// SpaceObject holds the state shared by every simulated entity. Concrete
// types embed it and override the behaviour hooks they need.
type SpaceObject struct {
	id        EntityID
	class     string
	X, Y      float64
	Rotation  float64 // degrees
	radius    float64
	Radar     RadarSignature
	destroyed bool
	repl      Replicator
	onDestroy func()
}

func (o *SpaceObject) initObject(class string, radius float64) {
	o.class = class
	o.radius = radius
	o.repl.Register("x", &o.X)
	o.repl.Register("y", &o.Y)
	o.repl.Register("rotation", &o.Rotation)
}

func (o *SpaceObject) ID() EntityID       { return o.id }
func (o *SpaceObject) Class() string      { return o.class }
func (o *SpaceObject) Base() *SpaceObject { return o }

// Position returns the planar world position
func (o *SpaceObject) Position() (float64, float64) { return o.X, o.Y }

// SetPosition moves the object; ignored once destroyed
func (o *SpaceObject) SetPosition(x, y float64) {
	if o.destroyed {
		return
	}
	o.X, o.Y = x, y
}

// Radius returns the geometric radius used by physics
func (o *SpaceObject) Radius() float64 { return o.radius }

func (o *SpaceObject) setRadius(r float64) { o.radius = r }

// Replicator exposes the replicated member table
func (o *SpaceObject) Replicator() *Replicator { return &o.repl }

func (o *SpaceObject) Destroyed() bool { return o.destroyed }

// Destroy marks the object dead and runs the owner's cleanup exactly once.
func (o *SpaceObject) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	if o.onDestroy != nil {
		o.onDestroy()
	}
}

// CanBeTargetedBy is false for plain objects; ships override it
func (o *SpaceObject) CanBeTargetedBy(attacker Object) bool { return false }

func (o *SpaceObject) TakeDamage(amount float64, info DamageInfo) {}

func (o *SpaceObject) Collidable() bool { return false }

func (o *SpaceObject) Update(dt float64) {}

// randRange returns a uniform value in [lo, hi)
func randRange(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// irandRange returns a uniform integer in [lo, hi]
func irandRange(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}
