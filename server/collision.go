package main

import (
	"math"
	"sort"
)

// ContactCellSize is the broad-phase cell edge, about 2x a large asteroid radius
const ContactCellSize = 256.0

// CheckCollision checks if two circles overlap
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// segmentCircleIntersect checks if a line segment (x1,y1)-(x2,y2) intersects a circle at (cx,cy) with radius r.
func segmentCircleIntersect(x1, y1, x2, y2, cx, cy, r float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	fx := x1 - cx
	fy := y1 - cy
	a := dx*dx + dy*dy
	c := fx*fx + fy*fy - r*r
	if a == 0 {
		return c <= 0
	}
	b := 2 * (fx*dx + fy*dy)
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false
	}
	discriminant = math.Sqrt(discriminant)
	t1 := (-b - discriminant) / (2 * a)
	t2 := (-b + discriminant) / (2 * a)
	return (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1) || (t1 <= 0 && t2 >= 1)
}

// maxGridSpan is the widest body, in cells per axis, that goes into the
// grid. Wider bodies are tested against every other body instead.
const maxGridSpan = 8

// ContactSolver is the physics layer: a grid broad phase followed by a
// circle narrow phase. Every overlapping pair is reported once per step to
// both sides' Collide handlers.
type ContactSolver struct {
	grid     *SpatialGrid
	bodies   []Object
	oversize []bool
	big      []int
	seen     []int
	buf      []int
}

// NewContactSolver creates a solver with the default cell size
func NewContactSolver() *ContactSolver {
	return &ContactSolver{grid: NewSpatialGrid(ContactCellSize)}
}

// Step runs one contact pass over objs and returns the number of contacts.
// Objects destroyed by an earlier contact in the same pass are skipped.
func (cs *ContactSolver) Step(objs []Object) int {
	cs.grid.Clear()
	cs.bodies = cs.bodies[:0]
	cs.oversize = cs.oversize[:0]
	cs.big = cs.big[:0]
	for _, o := range objs {
		if !o.Collidable() {
			continue
		}
		x, y := o.Position()
		r := o.Radius()
		idx := len(cs.bodies)
		cs.bodies = append(cs.bodies, o)
		if cs.grid.Span(r) > maxGridSpan {
			cs.oversize = append(cs.oversize, true)
			cs.big = append(cs.big, idx)
			continue
		}
		cs.oversize = append(cs.oversize, false)
		cs.grid.InsertCircle(x, y, r, idx)
	}
	if cap(cs.seen) < len(cs.bodies) {
		cs.seen = make([]int, len(cs.bodies))
	}
	cs.seen = cs.seen[:len(cs.bodies)]
	for i := range cs.seen {
		cs.seen[i] = -1
	}

	contacts := 0
	for i, a := range cs.bodies {
		if cs.oversize[i] || a.Destroyed() {
			continue
		}
		ax, ay := a.Position()
		cs.buf = cs.grid.QueryBuf(ax, ay, a.Radius(), cs.buf[:0])
		sort.Ints(cs.buf)
		for _, j := range cs.buf {
			if j <= i || cs.seen[j] == i {
				continue
			}
			cs.seen[j] = i
			if cs.contact(a, cs.bodies[j]) {
				contacts++
			}
			if a.Destroyed() {
				break
			}
		}
	}

	// oversize bodies meet everything; pairs of two oversize bodies are
	// tested once, from the lower index
	for _, i := range cs.big {
		a := cs.bodies[i]
		for j, b := range cs.bodies {
			if a.Destroyed() {
				break
			}
			if j == i || (cs.oversize[j] && j < i) {
				continue
			}
			if cs.contact(a, b) {
				contacts++
			}
		}
	}
	return contacts
}

// contact runs the narrow phase for one pair and reports whether they touched
func (cs *ContactSolver) contact(a, b Object) bool {
	if a.Destroyed() || b.Destroyed() {
		return false
	}
	ax, ay := a.Position()
	bx, by := b.Position()
	ar, br := a.Radius(), b.Radius()
	if !CheckCollision(ax, ay, ar, bx, by, br) {
		return false
	}
	force := ar + br - Distance(ax, ay, bx, by)
	if c, ok := a.(Collider); ok {
		c.Collide(b, force)
	}
	if c, ok := b.(Collider); ok {
		c.Collide(a, force)
	}
	return true
}
