package main

import (
	"fmt"
	"math/rand"
	"sort"
)

// ClassFactory builds a default-constructed object for a replicated class
type ClassFactory func(svc Services) Object

var classRegistry = map[string]ClassFactory{}

// RegisterClass makes a class constructible from spawn records
func RegisterClass(name string, f ClassFactory) {
	classRegistry[name] = f
}

func init() {
	RegisterClass("Asteroid", func(svc Services) Object { return NewAsteroid(svc) })
	RegisterClass("VisualAsteroid", func(svc Services) Object { return NewVisualAsteroid(svc) })
	RegisterClass("ExplosionEffect", func(svc Services) Object { return NewExplosionEffect(svc) })
	RegisterClass("Ship", func(svc Services) Object { return NewShip(svc, "", 0) })
}

// Mirror is the observer side of replication. It rebuilds objects from
// spawn records and applies member updates, dropping any update whose
// sequence number is not newer than the one already applied.
type Mirror struct {
	svc     Services
	objects map[EntityID]Object
	seqs    map[EntityID]map[string]uint32
	tick    uint64
}

// NewMirror creates a non-authoritative mirror
func NewMirror(seed int64) *Mirror {
	return &Mirror{
		svc: Services{
			Authority: SimContext{Server: false},
			Rand:      rand.New(rand.NewSource(seed)),
			Catalog:   DefaultCatalog{},
		},
		objects: make(map[EntityID]Object),
		seqs:    make(map[EntityID]map[string]uint32),
	}
}

// Apply folds a frame into the mirror. Spawns are applied before updates,
// destroys last.
func (m *Mirror) Apply(f *Frame) error {
	if f.Tick > m.tick {
		m.tick = f.Tick
	}
	for _, rec := range f.Spawns {
		if err := m.spawn(rec); err != nil {
			return err
		}
	}
	for _, rec := range f.Updates {
		obj, ok := m.objects[rec.ID]
		if !ok {
			continue
		}
		m.applyFields(obj, rec.Fields)
	}
	for _, id := range f.Destroys {
		if obj, ok := m.objects[id]; ok {
			obj.Destroy()
			delete(m.objects, id)
			delete(m.seqs, id)
		}
	}
	return nil
}

func (m *Mirror) spawn(rec SpawnRecord) error {
	obj, ok := m.objects[rec.ID]
	if !ok {
		factory, known := classRegistry[rec.Class]
		if !known {
			return fmt.Errorf("spawn %d: unknown class %q", rec.ID, rec.Class)
		}
		obj = factory(m.svc)
		obj.Base().id = rec.ID
		m.objects[rec.ID] = obj
		m.seqs[rec.ID] = make(map[string]uint32)
	}
	for name, v := range rec.Static {
		obj.Base().Replicator().SetStatic(name, v)
	}
	m.applyFields(obj, rec.Fields)
	return nil
}

func (m *Mirror) applyFields(obj Object, fields []FieldUpdate) {
	seqs := m.seqs[obj.ID()]
	for _, fu := range fields {
		if last, ok := seqs[fu.Name]; ok && fu.Seq <= last {
			continue
		}
		if obj.Base().Replicator().Set(fu.Name, fu.Value) {
			seqs[fu.Name] = fu.Seq
		}
	}
}

// Object returns a mirrored object by id
func (m *Mirror) Object(id EntityID) (Object, bool) {
	obj, ok := m.objects[id]
	return obj, ok
}

// Objects returns all mirrored objects ordered by id
func (m *Mirror) Objects() []Object {
	out := make([]Object, 0, len(m.objects))
	for _, obj := range m.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (m *Mirror) Len() int     { return len(m.objects) }
func (m *Mirror) Tick() uint64 { return m.tick }
