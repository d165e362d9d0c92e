package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 20 // replication frames per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const maxObjectsPerSector = 5000

var ErrSectorFull = errors.New("sector object limit reached")

// Observer receives encoded replication messages
type Observer interface {
	SendBinary(data []byte)
}

// EventSink records sector lifecycle events
type EventSink interface {
	Track(evtType string, entityID EntityID, sectorID string, data string)
}

// Sector is one authoritative simulation: it owns its objects, runs the
// tick loop and replicates state to observers.
type Sector struct {
	ID   string
	Name string

	mu        sync.RWMutex
	objects   map[EntityID]Object
	order     []Object
	nextID    EntityID
	tick      uint64
	svc       Services
	avoid     *AvoidanceIndex
	solver    *ContactSolver
	observers map[Observer]struct{}
	events    EventSink

	pendingSpawns   []Object
	pendingDestroys []EntityID
	refused         int

	stop chan struct{}
}

// sectorRegistry adapts a sector to EntityRegistry. Only valid while the
// sector lock is held (inside a tick or a Spawn callback).
type sectorRegistry struct {
	s *Sector
}

func (r sectorRegistry) Add(obj Object) { r.s.add(obj) }

// NewSector creates a sector; seed drives all spawn randomization
func NewSector(id, name string, seed int64, events EventSink) *Sector {
	s := &Sector{
		ID:        id,
		Name:      name,
		objects:   make(map[EntityID]Object),
		avoid:     NewAvoidanceIndex(),
		solver:    NewContactSolver(),
		observers: make(map[Observer]struct{}),
		events:    events,
		stop:      make(chan struct{}),
	}
	s.svc = Services{
		Authority: SimContext{Server: true},
		Rand:      rand.New(rand.NewSource(seed)),
		World:     sectorRegistry{s},
		Avoidance: s.avoid,
		Catalog:   DefaultCatalog{},
	}
	return s
}

// Run starts the tick loop and blocks until ctx is done or Stop is called
func (s *Sector) Run(ctx context.Context) {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.update()
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		}
	}
}

// Stop terminates the tick loop
func (s *Sector) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		select {
		case <-s.stop:
		default:
			close(s.stop)
		}
	}
}

// Spawn runs fn with the sector's authoritative services under the sector
// lock. Objects constructed with those services join the sector; once the
// sector is full further objects are refused and Spawn reports ErrSectorFull.
func (s *Sector) Spawn(fn func(svc Services) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.objects) >= maxObjectsPerSector {
		return ErrSectorFull
	}
	s.refused = 0
	err := fn(s.svc)
	s.avoid.Refresh()
	if err == nil && s.refused > 0 {
		err = fmt.Errorf("%d objects refused: %w", s.refused, ErrSectorFull)
	}
	return err
}

// DestroyObject removes an object on behalf of game rules
func (s *Sector) DestroyObject(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return false
	}
	obj.Destroy()
	return true
}

// add joins obj to the sector. A full sector refuses it: the object is
// left destroyed with no id, so it never replicates or registers as an
// obstacle.
func (s *Sector) add(obj Object) {
	base := obj.Base()
	if base.id != 0 {
		return
	}
	if len(s.objects) >= maxObjectsPerSector {
		base.destroyed = true
		s.refused++
		return
	}
	s.nextID++
	base.id = s.nextID
	s.objects[base.id] = obj
	base.onDestroy = func() { s.forget(obj) }
	s.pendingSpawns = append(s.pendingSpawns, obj)
	s.track(EvtSpawn, obj)
}

// forget is the destruction cleanup: the object leaves the sector, the
// avoidance index and, on the next frame, every observer.
func (s *Sector) forget(obj Object) {
	id := obj.ID()
	delete(s.objects, id)
	s.avoid.RemoveAvoidObject(id)
	for i, p := range s.pendingSpawns {
		if p.ID() == id {
			// never announced, nothing to retract
			s.pendingSpawns = append(s.pendingSpawns[:i], s.pendingSpawns[i+1:]...)
			s.track(EvtDestroy, obj)
			return
		}
	}
	s.pendingDestroys = append(s.pendingDestroys, id)
	s.track(EvtDestroy, obj)
}

func (s *Sector) track(evt string, obj Object) {
	if s.events == nil {
		return
	}
	s.events.Track(evt, obj.ID(), s.ID, fmt.Sprintf(`{"class":%q}`, obj.Class()))
}

func (s *Sector) sorted() []Object {
	s.order = s.order[:0]
	for _, obj := range s.objects {
		s.order = append(s.order, obj)
	}
	sort.Slice(s.order, func(i, j int) bool { return s.order[i].ID() < s.order[j].ID() })
	return s.order
}

// update runs one tick
func (s *Sector) update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	s.tick++

	objs := s.sorted()
	for _, obj := range objs {
		obj.Update(dt)
	}
	s.solver.Step(objs)
	s.avoid.Refresh()

	if s.tick%BroadcastEvery == 0 {
		s.broadcast()
	}
}

// collectFrame gathers spawns, member deltas and destroys since the last frame
func (s *Sector) collectFrame() *Frame {
	f := &Frame{Tick: s.tick}
	for _, obj := range s.pendingSpawns {
		fields, statics := obj.Base().Replicator().Snapshot(true)
		f.Spawns = append(f.Spawns, SpawnRecord{
			ID:     obj.ID(),
			Class:  obj.Class(),
			Fields: fields,
			Static: statics,
		})
	}
	s.pendingSpawns = s.pendingSpawns[:0]

	for _, obj := range s.sorted() {
		if fields := obj.Base().Replicator().Collect(); len(fields) > 0 {
			f.Updates = append(f.Updates, UpdateRecord{ID: obj.ID(), Fields: fields})
		}
	}

	if len(s.pendingDestroys) > 0 {
		f.Destroys = append([]EntityID(nil), s.pendingDestroys...)
		s.pendingDestroys = s.pendingDestroys[:0]
	}
	return f
}

func (s *Sector) broadcast() {
	f := s.collectFrame()
	if f.Empty() || len(s.observers) == 0 {
		return
	}
	data, err := EncodeFrame(f)
	if err != nil {
		log.Printf("sector %s: %v", s.ID, err)
		return
	}
	for obs := range s.observers {
		obs.SendBinary(data)
	}
}

// keyframe lists every live object without consuming pending deltas
func (s *Sector) keyframe() *Frame {
	f := &Frame{Tick: s.tick, Keyframe: true}
	for _, obj := range s.sorted() {
		fields, statics := obj.Base().Replicator().Snapshot(false)
		f.Spawns = append(f.Spawns, SpawnRecord{
			ID:     obj.ID(),
			Class:  obj.Class(),
			Fields: fields,
			Static: statics,
		})
	}
	return f
}

// Subscribe sends obs a keyframe and then every following frame
func (s *Sector) Subscribe(obs Observer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := EncodeKeyframe(s.keyframe())
	if err != nil {
		return err
	}
	obs.SendBinary(data)
	s.observers[obs] = struct{}{}
	return nil
}

// Unsubscribe stops sending frames to obs
func (s *Sector) Unsubscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, obs)
}

// Find returns a live object. Callers must not mutate it outside Spawn.
func (s *Sector) Find(id EntityID) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	return obj, ok
}

// Avoidance returns the sector's obstacle index for path planners
func (s *Sector) Avoidance() *AvoidanceIndex { return s.avoid }

func (s *Sector) Tick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tick
}

func (s *Sector) ObjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Info summarizes the sector for listings
func (s *Sector) Info() SectorInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SectorInfo{
		ID:        s.ID,
		Name:      s.Name,
		Objects:   len(s.objects),
		Obstacles: s.avoid.Len(),
		Observers: len(s.observers),
		Tick:      s.tick,
	}
}
