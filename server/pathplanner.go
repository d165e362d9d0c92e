package main

import (
	"sort"
	"sync"
)

// AvoidObstacle is what path planners see of a registered object
type AvoidObstacle struct {
	ID     EntityID
	X, Y   float64
	Radius float64
}

type avoidEntry struct {
	obj Object
	AvoidObstacle
}

// AvoidanceIndex tracks objects autonomous navigators must route around.
// Readers only see the snapshot taken at registration or the last Refresh,
// so planners on other goroutines never touch live object state.
type AvoidanceIndex struct {
	mu      sync.RWMutex
	entries map[EntityID]*avoidEntry
}

// NewAvoidanceIndex creates an empty index
func NewAvoidanceIndex() *AvoidanceIndex {
	return &AvoidanceIndex{entries: make(map[EntityID]*avoidEntry)}
}

// AddAvoidObject registers obj with the given clearance radius. Registering
// the same id again replaces the radius.
func (ix *AvoidanceIndex) AddAvoidObject(obj Object, radius float64) {
	if obj == nil || obj.Destroyed() || radius <= 0 {
		return
	}
	x, y := obj.Position()
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries[obj.ID()] = &avoidEntry{
		obj:           obj,
		AvoidObstacle: AvoidObstacle{ID: obj.ID(), X: x, Y: y, Radius: radius},
	}
}

// RemoveAvoidObject drops an id; unknown ids are ignored
func (ix *AvoidanceIndex) RemoveAvoidObject(id EntityID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, id)
}

// Refresh re-reads positions and prunes destroyed objects. It must run on
// the goroutine that owns the objects, between ticks.
func (ix *AvoidanceIndex) Refresh() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for id, e := range ix.entries {
		if e.obj.Destroyed() {
			delete(ix.entries, id)
			continue
		}
		e.X, e.Y = e.obj.Position()
	}
}

// Lookup returns the clearance radius registered for id
func (ix *AvoidanceIndex) Lookup(id EntityID) (float64, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.entries[id]
	if !ok {
		return 0, false
	}
	return e.Radius, true
}

// Len returns the number of registered obstacles
func (ix *AvoidanceIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Query returns the obstacles whose clearance circle overlaps the circle
// at (x, y) with radius r, ordered by id.
func (ix *AvoidanceIndex) Query(x, y, r float64) []AvoidObstacle {
	ix.mu.RLock()
	var out []AvoidObstacle
	for _, e := range ix.entries {
		if CheckCollision(x, y, r, e.X, e.Y, e.Radius) {
			out = append(out, e.AvoidObstacle)
		}
	}
	ix.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Blocked reports whether the straight segment from (x1,y1) to (x2,y2),
// widened by clearance, crosses any obstacle.
func (ix *AvoidanceIndex) Blocked(x1, y1, x2, y2, clearance float64) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, e := range ix.entries {
		if segmentCircleIntersect(x1, y1, x2, y2, e.X, e.Y, e.Radius+clearance) {
			return true
		}
	}
	return false
}
